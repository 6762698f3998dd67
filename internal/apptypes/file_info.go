package apptypes

// FileInfo holds the basic info and access path of an uploaded file.
type FileInfo struct {
	URL      string `json:"url"`      // publicly reachable URL
	Path     string `json:"path"`     // path or identifier inside the storage system
	Size     int64  `json:"size"`     // size in bytes
	MimeType string `json:"mimeType"` // MIME type of the file
	FileName string `json:"fileName"` // original file name
}
