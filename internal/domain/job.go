package domain

// JobListing is one opening extracted from a careers page by the backend.
// It is never modified on the client.
type JobListing struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
}

// Clone returns a copy that shares no slices with j.
func (j JobListing) Clone() JobListing {
	out := j
	if j.Skills != nil {
		out.Skills = append([]string(nil), j.Skills...)
	}
	return out
}

// CloneJobs copies a job list.
func CloneJobs(in []JobListing) []JobListing {
	out := make([]JobListing, len(in))
	for i, j := range in {
		out[i] = j.Clone()
	}
	return out
}
