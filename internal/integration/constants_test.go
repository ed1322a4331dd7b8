package integration_test

const (
	// Identity related constants
	TestHolderId      = 1
	TestOtherHolderId = 2
	TestAdminId       = 100

	// Seeded screening constants, see testdata/*.sql
	TestScreeningId         = 1
	TestImminentScreeningId = 2
	TestTheaterId           = 1
	TestTheaterName         = "Test Theater 1"
	TestMovieTitle          = "Test Movie"

	TestContactEmail = "holder@example.com"
)
