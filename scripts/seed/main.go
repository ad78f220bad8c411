// Command seed loads demo instructors and listings into a realtime database
// instance so the console has data to moderate during local development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

type listing struct {
	InstructorID  string `json:"instructorId"`
	UserListingID string `json:"userListingId,omitempty"`
	ListingID     string `json:"listingId,omitempty"`
	Title         string `json:"title,omitempty"`
	ClassName     string `json:"className,omitempty"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Price         string `json:"price"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"createdAt"`
	CoverPhoto    string `json:"coverPhoto,omitempty"`
}

type personalInfo struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	UserType       string `json:"userType"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

func main() {
	var (
		baseURL string
		auth    string
		timeout time.Duration
	)

	flag.StringVar(&baseURL, "rtdb-url", "http://localhost:9000", "Realtime database base URL")
	flag.StringVar(&auth, "auth", "", "Database auth token (optional)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP timeout per write")
	flag.Parse()

	baseURL = strings.TrimRight(baseURL, "/")
	client := &http.Client{Timeout: timeout}

	now := time.Now().UTC().UnixMilli()

	instructors := map[string]personalInfo{
		"inst-amara": {
			FullName:       "Amara Okafor",
			Email:          "amara@example.com",
			UserType:       "instructor",
			ProfilePicture: "https://example.com/amara.jpg",
		},
		"inst-kwame": {
			FullName: "Kwame Mensah",
			Email:    "kwame@example.com",
			UserType: "instructor",
		},
	}

	listings := map[string]listing{
		"listing-1": {
			InstructorID:  "inst-amara",
			UserListingID: "mirror-1",
			Title:         "Yoruba for Beginners",
			Description:   "Weekly conversational Yoruba classes.",
			Location:      "Lagos",
			Price:         "25",
			Status:        "pending",
			CreatedAt:     now - 3600_000,
			CoverPhoto:    "https://example.com/yoruba.jpg",
		},
		"listing-2": {
			InstructorID: "inst-kwame",
			ClassName:    "Kente Weaving Workshop",
			Location:     "Accra",
			Price:        "40",
			Status:       "pending",
			CreatedAt:    now - 7200_000,
		},
		"listing-3": {
			InstructorID: "inst-amara",
			Title:        "West African Drumming",
			Location:     "Lagos",
			Price:        "30",
			Status:       "approved",
			CreatedAt:    now - 86_400_000,
			CoverPhoto:   "https://example.com/drums.jpg",
		},
	}

	for uid, info := range instructors {
		put(client, baseURL, auth, fmt.Sprintf("users/%s/personalInfo", uid), info)
	}
	for id, l := range listings {
		put(client, baseURL, auth, fmt.Sprintf("Listings/%s", id), l)
		if l.UserListingID != "" {
			// The per-instructor copy points back at the global record.
			mirror := l
			mirror.ListingID = id
			put(client, baseURL, auth, fmt.Sprintf("users/%s/Listings/%s", l.InstructorID, l.UserListingID), mirror)
		}
	}

	log.Printf("seeded %d instructors and %d listings into %s", len(instructors), len(listings), baseURL)
}

func put(client *http.Client, baseURL, auth, path string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Fatalf("marshal %s: %v", path, err)
	}

	url := fmt.Sprintf("%s/%s.json", baseURL, path)
	if auth != "" {
		url += "?auth=" + auth
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("build request %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("write %s: unexpected status %d", path, resp.StatusCode)
	}
	log.Printf("wrote %s", path)
}
