//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// PeerKind tells which variant a peer reference points at
// ENUM(user,channel,unknown)
type PeerKind string
