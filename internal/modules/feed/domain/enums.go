//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Format is the syndication encoding of a feed
// ENUM(rss,atom,json)
type Format string
