package dto

// PostResponse is the response body for the post-creation endpoint.
// It reports whether a post was published and carries the evaluated quote
// and caption either way, so a skipped run is still inspectable.
type PostResponse struct {
	Posted  bool   `json:"posted"`
	Quote   string `json:"quote"`
	Caption string `json:"caption"`
}
