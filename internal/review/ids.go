package review

import "github.com/google/uuid"

// uuidGenerator is the default IDGenerator, matching the teacher's
// uuid.New() convention used everywhere else it mints an identifier.
type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.New().String() }
