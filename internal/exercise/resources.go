package exercise

import (
	"regexp"
	"strings"
)

// Resource is one curated stretch with a demo video.
type Resource struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	YouTubeEmbedURL string `json:"youtube_embed_url"`
	ThumbnailURL    string `json:"thumbnail_url"`
	BodyPart        string `json:"body_part"`
	Description     string `json:"description"`
}

var embedIDRe = regexp.MustCompile(`/embed/([A-Za-z0-9_-]+)`)

// youtubeThumbnail derives the hqdefault thumbnail from an embed URL.
func youtubeThumbnail(embedURL string) string {
	m := embedIDRe.FindStringSubmatch(embedURL)
	if m == nil {
		return ""
	}
	return "https://img.youtube.com/vi/" + m[1] + "/hqdefault.jpg"
}

func newResource(id, title, embedURL, bodyPart, description string) Resource {
	return Resource{
		ID:              id,
		Title:           title,
		YouTubeEmbedURL: embedURL,
		ThumbnailURL:    youtubeThumbnail(embedURL),
		BodyPart:        bodyPart,
		Description:     description,
	}
}

// resources is the curated stretch table in presentation order.
var resources = []Resource{
	newResource("neck_lateral_flexion", "Neck Lateral Flexion Stretch",
		"https://www.youtube.com/embed/2NZMaI-HeNU", "Neck",
		"Gently tilt your head toward one shoulder, hold 15-30 seconds, then switch sides."),
	newResource("neck_rotation", "Neck Rotation Stretch",
		"https://www.youtube.com/embed/wQylqaCl8Zo", "Neck",
		"Slowly turn your head to one side until you feel a stretch, hold 15-30 seconds, then switch."),
	newResource("upper_trap_stretch", "Upper Trapezius Stretch",
		"https://www.youtube.com/embed/2NZMaI-HeNU", "Neck / Shoulder",
		"Tilt head away from tight side while gently pressing down with opposite hand. Hold 20-30 seconds."),
	newResource("shoulder_cross_body", "Shoulder Cross-Body Stretch",
		"https://www.youtube.com/embed/Rl4Zudadpc8", "Shoulder",
		"Bring one arm across your chest, use the opposite hand to press gently. Hold 20-30 seconds."),
	newResource("shoulder_overhead", "Overhead Shoulder Stretch",
		"https://www.youtube.com/embed/es0Nh_XlWOg", "Shoulder / Lat",
		"Reach one arm overhead and bend elbow behind your head. Use other hand to gently pull. Hold 20-30 seconds."),
	newResource("chest_opener", "Chest Opener Stretch",
		"https://www.youtube.com/embed/SxQkGMuYNEA", "Chest",
		"Clasp hands behind your back, straighten arms and lift gently while opening chest. Hold 20-30 seconds."),
	newResource("bicep_stretch", "Bicep Wall Stretch",
		"https://www.youtube.com/embed/iSx_0xJMGi4", "Arm",
		"Place palm flat against wall at shoulder height, slowly rotate body away. Hold 20-30 seconds per arm."),
	newResource("tricep_stretch", "Tricep Stretch",
		"https://www.youtube.com/embed/es0Nh_XlWOg", "Arm",
		"Reach one hand behind your head, use other hand to gently press elbow back. Hold 20-30 seconds."),
	newResource("wrist_flexor_stretch", "Wrist Flexor Stretch",
		"https://www.youtube.com/embed/u4w0Y5NQFLY", "Arm / Wrist",
		"Extend arm, palm up. Use other hand to gently press fingers back toward you. Hold 15-20 seconds."),
	newResource("cat_cow", "Cat-Cow Stretch",
		"https://www.youtube.com/embed/kqnua4rHVVA", "Spine",
		"On all fours, alternate between arching your back (cow) and rounding it (cat). 10-15 reps."),
}

var resourceByID = buildResourceIndex()

func buildResourceIndex() map[string]Resource {
	idx := make(map[string]Resource, len(resources))
	for _, r := range resources {
		idx[r.ID] = r
	}
	return idx
}

// LookupResource returns the curated stretch with the given ID.
func LookupResource(id string) (Resource, bool) {
	r, ok := resourceByID[id]
	return r, ok
}

// SearchResources fuzzy-matches the curated table: first by the query
// appearing in a title or body part, then by any query word appearing in a
// title.
func SearchResources(query string) (Resource, bool) {
	q := strings.ToLower(query)
	for _, r := range resources {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.BodyPart), q) {
			return r, true
		}
	}
	for _, r := range resources {
		title := strings.ToLower(r.Title)
		for _, word := range strings.Fields(q) {
			if strings.Contains(title, word) {
				return r, true
			}
		}
	}
	return Resource{}, false
}

// ResourceIDs returns all curated stretch IDs in table order.
func ResourceIDs() []string {
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	return ids
}
