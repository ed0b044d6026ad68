package hatebu

import (
	"fmt"
	"strings"
)

// Bookmark is one user bookmark on an entry.
type Bookmark struct {
	User      string `json:"user"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
}

// IconURL returns the bookmarking user's profile icon.
func (b Bookmark) IconURL() string {
	return fmt.Sprintf("https://cdn.profile-image.st-hatena.com/users/%s/profile.png", b.User)
}

// Entry is the bookmark record for one URL.
type Entry struct {
	Count     int        `json:"count"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// Comments returns the bookmarks carrying a non-blank comment.
func (e *Entry) Comments() []Bookmark {
	var out []Bookmark
	for _, b := range e.Bookmarks {
		if strings.TrimSpace(b.Comment) != "" {
			out = append(out, b)
		}
	}
	return out
}

func (e *Entry) CommentCount() int {
	return len(e.Comments())
}
