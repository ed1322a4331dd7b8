package domain

import "context"

// Theater is a minimal collaborator: screenings reference it for scheduling
// and display. Hall/room management lives outside this service.
type Theater struct {
	ID   int
	Name string
}

type TheaterRepository interface {
	GetById(ctx context.Context, id int) (*Theater, error)
}
