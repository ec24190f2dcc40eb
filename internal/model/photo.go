package model

import "time"

// Photo is a single image owned by a collection.
// StoragePath locates the object in the primary store. S3Key is set only for
// photos uploaded through the external store; such photos are removed through
// the deletion intermediary instead of the primary store.
type Photo struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	StoragePath  string    `json:"storage_path"`
	S3Key        string    `json:"s3_key,omitempty"`
	PublicURL    string    `json:"public_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// External reports whether the photo lives in the external object store.
func (p Photo) External() bool {
	return p.S3Key != ""
}

// Collection groups photos under a display name and slug.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CoverURL  string    `json:"cover_url"`
	CreatedAt time.Time `json:"created_at"`
	Photos    []Photo   `json:"photos"`
}

// Photo returns the photo with the given ID, if the collection owns it.
func (c *Collection) Photo(id string) (Photo, bool) {
	for _, p := range c.Photos {
		if p.ID == id {
			return p, true
		}
	}
	return Photo{}, false
}

// RemovePhotos drops every photo whose ID is in ids and keeps the order of the rest.
func (c *Collection) RemovePhotos(ids []string) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := c.Photos[:0]
	for _, p := range c.Photos {
		if _, ok := drop[p.ID]; !ok {
			kept = append(kept, p)
		}
	}
	c.Photos = kept
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := *c
	out.Photos = append([]Photo(nil), c.Photos...)
	return &out
}
