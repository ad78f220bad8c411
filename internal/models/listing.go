package models

import "encoding/json"

// ListingStatus is the moderation state of a class listing.
type ListingStatus string

const (
	StatusPending   ListingStatus = "pending"
	StatusApproved  ListingStatus = "approved"
	StatusPublished ListingStatus = "published"
	StatusRejected  ListingStatus = "rejected"
)

// SortBucket orders statuses for the review queue: pending first, live
// listings next, rejected last. Unknown statuses sort with live listings.
func (s ListingStatus) SortBucket() int {
	switch s {
	case StatusPending:
		return 0
	case StatusRejected:
		return 2
	default:
		return 1
	}
}

// Listing is a class listing record. Moderation rewrites the full record, so
// fields this service does not model are retained verbatim in Extra and
// written back unchanged.
type Listing struct {
	ID            string        `json:"id,omitempty"`
	InstructorID  string        `json:"instructorId,omitempty"`
	UserListingID string        `json:"userListingId,omitempty"`
	ListingID     string        `json:"listingId,omitempty"`
	Title         string        `json:"title,omitempty"`
	ClassName     string        `json:"className,omitempty"`
	Description   string        `json:"description,omitempty"`
	Location      string        `json:"location,omitempty"`
	Price         json.Number   `json:"price,omitempty"`
	Status        ListingStatus `json:"status,omitempty"`

	// Epoch milliseconds; zero means unset.
	CreatedAt  int64 `json:"createdAt,omitempty"`
	ApprovedAt int64 `json:"approvedAt,omitempty"`
	RejectedAt int64 `json:"rejectedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`

	// legacyOwner marks records whose owner was read from the historical
	// userId key; marshalling keeps that key and does not add instructorId.
	legacyOwner bool
}

// knownListingFields are the keys lifted out of the raw record into typed
// struct fields.
var knownListingFields = map[string]struct{}{
	"id":            {},
	"instructorId":  {},
	"userListingId": {},
	"listingId":     {},
	"title":         {},
	"className":     {},
	"description":   {},
	"location":      {},
	"price":         {},
	"status":        {},
	"createdAt":     {},
	"approvedAt":    {},
	"rejectedAt":    {},
}

// listingFields mirrors Listing without the custom JSON methods.
type listingFields struct {
	ID            string        `json:"id,omitempty"`
	InstructorID  string        `json:"instructorId,omitempty"`
	UserListingID string        `json:"userListingId,omitempty"`
	ListingID     string        `json:"listingId,omitempty"`
	Title         string        `json:"title,omitempty"`
	ClassName     string        `json:"className,omitempty"`
	Description   string        `json:"description,omitempty"`
	Location      string        `json:"location,omitempty"`
	Price         json.Number   `json:"price,omitempty"`
	Status        ListingStatus `json:"status,omitempty"`
	CreatedAt     int64         `json:"createdAt,omitempty"`
	ApprovedAt    int64         `json:"approvedAt,omitempty"`
	RejectedAt    int64         `json:"rejectedAt,omitempty"`
}

// UnmarshalJSON decodes the known fields and stashes everything else in
// Extra.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var fields listingFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = Listing{
		ID:            fields.ID,
		InstructorID:  fields.InstructorID,
		UserListingID: fields.UserListingID,
		ListingID:     fields.ListingID,
		Title:         fields.Title,
		ClassName:     fields.ClassName,
		Description:   fields.Description,
		Location:      fields.Location,
		Price:         fields.Price,
		Status:        fields.Status,
		CreatedAt:     fields.CreatedAt,
		ApprovedAt:    fields.ApprovedAt,
		RejectedAt:    fields.RejectedAt,
	}
	for key, value := range raw {
		if _, known := knownListingFields[key]; known {
			continue
		}
		if l.Extra == nil {
			l.Extra = map[string]json.RawMessage{}
		}
		l.Extra[key] = value
	}
	// Records written before the instructorId key stored the owner under
	// userId. That key stays in Extra and round-trips verbatim.
	if l.InstructorID == "" {
		if value, ok := raw["userId"]; ok {
			var uid string
			if err := json.Unmarshal(value, &uid); err == nil && uid != "" {
				l.InstructorID = uid
				l.legacyOwner = true
			}
		}
	}
	return nil
}

// MarshalJSON emits the typed fields overlaid on the retained extras, so a
// decode/encode round trip reproduces the stored record plus any edits.
func (l Listing) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(l.Extra)+len(knownListingFields))
	for key, value := range l.Extra {
		out[key] = value
	}

	typed, err := json.Marshal(listingFields{
		ID:            l.ID,
		InstructorID:  l.InstructorID,
		UserListingID: l.UserListingID,
		ListingID:     l.ListingID,
		Title:         l.Title,
		ClassName:     l.ClassName,
		Description:   l.Description,
		Location:      l.Location,
		Price:         l.Price,
		Status:        l.Status,
		CreatedAt:     l.CreatedAt,
		ApprovedAt:    l.ApprovedAt,
		RejectedAt:    l.RejectedAt,
	})
	if err != nil {
		return nil, err
	}
	var typedMap map[string]json.RawMessage
	if err := json.Unmarshal(typed, &typedMap); err != nil {
		return nil, err
	}
	for key, value := range typedMap {
		if key == "instructorId" && l.legacyOwner {
			continue
		}
		out[key] = value
	}

	return json.Marshal(out)
}

// GlobalKey returns the key of the listing's global record. Mirror copies
// point back at it through listingId; a mirror written without that field is
// keyed the same in both collections.
func (l Listing) GlobalKey() string {
	if l.ListingID != "" {
		return l.ListingID
	}
	return l.ID
}

// DecodeListingMap decodes a keyed raw collection into listings, skipping
// entries that are not well-formed records. Listings missing an id take
// their collection key. The second return is the number of skipped entries.
func DecodeListingMap(raw map[string]json.RawMessage) (map[string]Listing, int) {
	listings := make(map[string]Listing, len(raw))
	skipped := 0
	for key, value := range raw {
		var listing Listing
		if err := json.Unmarshal(value, &listing); err != nil {
			skipped++
			continue
		}
		if listing.ID == "" {
			listing.ID = key
		}
		listings[key] = listing
	}
	return listings, skipped
}

// DisplayName is the listing's display label. Records written before the
// title field existed carry only className.
func (l Listing) DisplayName() string {
	if l.Title != "" {
		return l.Title
	}
	return l.ClassName
}

// MirrorKey returns the key of the per-instructor copy of this listing. The
// global record points back at it through userListingId; records written
// before that field existed mirror under their own id.
func (l Listing) MirrorKey() string {
	if l.UserListingID != "" {
		return l.UserListingID
	}
	return l.ID
}

// DecisionTime is the timestamp used to order listings within a status
// bucket: the moderation decision time when one exists, the creation time
// otherwise.
func (l Listing) DecisionTime() int64 {
	if l.ApprovedAt != 0 {
		return l.ApprovedAt
	}
	if l.RejectedAt != 0 {
		return l.RejectedAt
	}
	return l.CreatedAt
}

// Less orders listings for the review queue: pending before live before
// rejected, newest decisions first within a bucket.
func (l Listing) Less(other Listing) bool {
	lb, ob := l.Status.SortBucket(), other.Status.SortBucket()
	if lb != ob {
		return lb < ob
	}
	return l.DecisionTime() > other.DecisionTime()
}
