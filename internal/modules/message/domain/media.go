package domain

import "fmt"

// Media is the attachment of a message: *Photo, *Document, *WebPage or
// *Unsupported.
type Media interface {
	isMedia()
}

// Thumb is a downloadable size of a photo or a document preview.
type Thumb struct {
	Type  string
	Width int
	Size  int
}

type Photo struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	// Sizes are ordered by byte size, smallest first.
	Sizes []Thumb
}

type Document struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	MimeType      string
	// FileName is taken from the first attribute carrying one.
	FileName string
	Width    int
	Size     int64
	Kind     DocumentKind
	// Thumbs are ordered by byte size, smallest first.
	Thumbs []Thumb
}

// WebPage is a link preview
type WebPage struct {
	URL         string
	SiteName    string
	Author      string
	Title       string
	Description string
	Photo       *Photo
}

// Unsupported is any attachment the renderer has no markup for (polls,
// geo points, contacts and so on).
type Unsupported struct {
	Type string
}

func (*Photo) isMedia()       {}
func (*Document) isMedia()    {}
func (*WebPage) isMedia()     {}
func (*Unsupported) isMedia() {}

// Location addresses a file for download.
type Location struct {
	Kind          LocationKind
	ID            int64
	AccessHash    int64
	FileReference []byte
	// ThumbSize selects a thumbnail; empty downloads the original document.
	ThumbSize string
}

// DefaultFileName names a download that carries no file name of its own:
// "<peer>_<message><ext>".
func DefaultFileName(peer string, msgID int, ext string) string {
	return fmt.Sprintf("%s_%d%s", peer, msgID, ext)
}
