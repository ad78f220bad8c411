package models

import "encoding/json"

// User types stored under users/{uid}/personalInfo/userType. The instructor
// check is exact-case; the admin gate uses the capitalised form.
const (
	UserTypeInstructor = "instructor"
	UserTypeAdmin      = "Admin"
)

// UnknownInstructorName labels instructor cards whose profile has no name.
const UnknownInstructorName = "Unknown Instructor"

// PersonalInfo is the profile record stored at users/{uid}/personalInfo.
// The three image fields are historical variants; Contact picks the first
// one present.
type PersonalInfo struct {
	FullName        string `json:"fullName,omitempty"`
	Email           string `json:"email,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	UserType        string `json:"userType,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	ProfilePicture  string `json:"profilePicture,omitempty"`
	ProfileImageURI string `json:"profileImageUri,omitempty"`
}

// Contact is the resolved instructor identity attached to review-queue rows.
type Contact struct {
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

// Instructor is an instructor account with its own listings, as shown on the
// per-instructor moderation view.
type Instructor struct {
	UID        string       `json:"uid"`
	Name       string       `json:"name"`
	Profile    PersonalInfo `json:"profile"`
	Listings   []Listing    `json:"listings"`
	HasPending bool         `json:"hasPending"`
}

// ReviewItem is one row of the global review queue: a pending listing plus
// the submitting instructor's resolved contact.
type ReviewItem struct {
	Listing    Listing `json:"listing"`
	Instructor Contact `json:"instructor"`
}

// userRecord is the raw shape stored at users/{uid}. Listings stay raw so a
// single malformed entry cannot fail a whole users scan.
type userRecord struct {
	PersonalInfo PersonalInfo               `json:"personalInfo"`
	Listings     map[string]json.RawMessage `json:"Listings"`
}

// DecodeInstructors shapes a raw users subtree into instructor view models:
// one per user whose profile userType is exactly "instructor", carrying every
// well-formed listing under the user regardless of status. Malformed user
// and listing entries are skipped; the second return counts them.
func DecodeInstructors(raw map[string]json.RawMessage) ([]Instructor, int) {
	var instructors []Instructor
	skipped := 0
	for uid, value := range raw {
		var record userRecord
		if err := json.Unmarshal(value, &record); err != nil {
			skipped++
			continue
		}
		if record.PersonalInfo.UserType != UserTypeInstructor {
			continue
		}
		decoded, badListings := DecodeListingMap(record.Listings)
		skipped += badListings
		listings := make([]Listing, 0, len(decoded))
		for _, listing := range decoded {
			listings = append(listings, listing)
		}
		name := record.PersonalInfo.FullName
		if name == "" {
			name = UnknownInstructorName
		}
		instructors = append(instructors, Instructor{
			UID:      uid,
			Name:     name,
			Profile:  record.PersonalInfo,
			Listings: listings,
		})
	}
	return instructors, skipped
}
