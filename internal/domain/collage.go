package domain

// Collage is a user-owned named group of pictures (many-to-many).
type Collage struct {
	Id       CollageId
	Name     string
	Owner    UserId
	Pictures []Picture // populated when fetched with members
}
