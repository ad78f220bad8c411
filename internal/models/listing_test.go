package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingRetainsUnknownFields(t *testing.T) {
	raw := []byte(`{
		"className": "Drumming",
		"status": "pending",
		"coverPhoto": "x.jpg",
		"schedule": {"day": "Mon"},
		"maxStudents": 12
	}`)

	var listing Listing
	require.NoError(t, json.Unmarshal(raw, &listing))

	assert.Equal(t, "Drumming", listing.ClassName)
	assert.Equal(t, StatusPending, listing.Status)
	assert.Contains(t, listing.Extra, "coverPhoto")
	assert.Contains(t, listing.Extra, "schedule")
	assert.Contains(t, listing.Extra, "maxStudents")

	listing.Status = StatusApproved
	listing.ApprovedAt = 1700000000000

	out, err := json.Marshal(listing)
	require.NoError(t, err)

	var round map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Equal(t, "approved", round["status"])
	assert.Equal(t, "x.jpg", round["coverPhoto"])
	assert.Equal(t, float64(12), round["maxStudents"])
	assert.Equal(t, float64(1700000000000), round["approvedAt"])
}

func TestMirrorKeyFallsBackToID(t *testing.T) {
	assert.Equal(t, "k1", Listing{ID: "l1", UserListingID: "k1"}.MirrorKey())
	assert.Equal(t, "l1", Listing{ID: "l1"}.MirrorKey())
}

func TestDecodeOwnerKeys(t *testing.T) {
	var current Listing
	require.NoError(t, json.Unmarshal([]byte(`{"instructorId": "u1", "status": "pending"}`), &current))
	assert.Equal(t, "u1", current.InstructorID)

	var legacy Listing
	require.NoError(t, json.Unmarshal([]byte(`{"userId": "u2", "status": "pending"}`), &legacy))
	assert.Equal(t, "u2", legacy.InstructorID)

	// A legacy record round-trips with its historical key and nothing added.
	out, err := json.Marshal(legacy)
	require.NoError(t, err)
	var round map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Equal(t, "u2", round["userId"])
	assert.NotContains(t, round, "instructorId")
}

func TestDisplayNameFallsBackToClassName(t *testing.T) {
	assert.Equal(t, "Yoga", Listing{Title: "Yoga", ClassName: "Old Yoga"}.DisplayName())
	assert.Equal(t, "Old Yoga", Listing{ClassName: "Old Yoga"}.DisplayName())
}

func TestGlobalKeyFallsBackToID(t *testing.T) {
	assert.Equal(t, "g1", Listing{ID: "m1", ListingID: "g1"}.GlobalKey())
	assert.Equal(t, "m1", Listing{ID: "m1"}.GlobalKey())
}

func TestDecodeListingMapSkipsMalformed(t *testing.T) {
	raw := map[string]json.RawMessage{
		"l1":  json.RawMessage(`{"status": "pending"}`),
		"bad": json.RawMessage(`42`),
	}

	listings, skipped := DecodeListingMap(raw)

	assert.Equal(t, 1, skipped)
	require.Len(t, listings, 1)
	assert.Equal(t, "l1", listings["l1"].ID)
	assert.Equal(t, StatusPending, listings["l1"].Status)
}

func TestDecodeInstructorsExactCase(t *testing.T) {
	raw := map[string]json.RawMessage{
		"u1":  json.RawMessage(`{"personalInfo": {"userType": "instructor", "fullName": "Ama Serwaa"}, "Listings": {"m1": {"status": "pending"}, "bad": "nope"}}`),
		"u2":  json.RawMessage(`{"personalInfo": {"userType": "Instructor"}}`),
		"u3":  json.RawMessage(`{"personalInfo": {"userType": "Admin"}}`),
		"bad": json.RawMessage(`[]`),
	}

	instructors, skipped := DecodeInstructors(raw)

	assert.Equal(t, 2, skipped)
	require.Len(t, instructors, 1)
	assert.Equal(t, "u1", instructors[0].UID)
	assert.Equal(t, "Ama Serwaa", instructors[0].Name)
	require.Len(t, instructors[0].Listings, 1)
	assert.Equal(t, "m1", instructors[0].Listings[0].ID)
}

func TestDecodeInstructorsNamePlaceholder(t *testing.T) {
	raw := map[string]json.RawMessage{
		"u1": json.RawMessage(`{"personalInfo": {"userType": "instructor", "email": "a@example.com"}}`),
	}

	instructors, skipped := DecodeInstructors(raw)

	assert.Zero(t, skipped)
	require.Len(t, instructors, 1)
	assert.Equal(t, UnknownInstructorName, instructors[0].Name)
}

func TestDecisionTimePrecedence(t *testing.T) {
	assert.Equal(t, int64(3), Listing{ApprovedAt: 3, RejectedAt: 2, CreatedAt: 1}.DecisionTime())
	assert.Equal(t, int64(2), Listing{RejectedAt: 2, CreatedAt: 1}.DecisionTime())
	assert.Equal(t, int64(1), Listing{CreatedAt: 1}.DecisionTime())
}

func TestSortBucket(t *testing.T) {
	assert.Equal(t, 0, StatusPending.SortBucket())
	assert.Equal(t, 1, StatusApproved.SortBucket())
	assert.Equal(t, 1, StatusPublished.SortBucket())
	assert.Equal(t, 2, StatusRejected.SortBucket())
	assert.Equal(t, 1, ListingStatus("draft").SortBucket())
}
