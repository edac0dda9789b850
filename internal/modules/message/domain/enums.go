//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// DocumentKind classifies a document attachment by its attributes
// ENUM(generic,sticker,gif,video)
type DocumentKind string

// LocationKind tells which file location constructor a download needs
// ENUM(photo,document)
type LocationKind string
