package imapmail

import (
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-imap"
)

const (
	maxPartBytes  = 64 << 10
	snippetLength = 200
)

// textPart returns the section path and structure of the first text/plain or
// text/html part, depth first. A single-part message has path [1].
func textPart(bs *imap.BodyStructure) ([]int, *imap.BodyStructure) {
	if bs == nil {
		return nil, nil
	}
	if len(bs.Parts) == 0 {
		if isText(bs) {
			return []int{1}, bs
		}
		return nil, nil
	}
	return findText(bs.Parts, nil)
}

func findText(parts []*imap.BodyStructure, prefix []int) ([]int, *imap.BodyStructure) {
	for i, part := range parts {
		if part == nil {
			continue
		}
		path := append(append([]int(nil), prefix...), i+1)
		if len(part.Parts) > 0 {
			if p, found := findText(part.Parts, path); found != nil {
				return p, found
			}
			continue
		}
		if isText(part) {
			return path, part
		}
	}
	return nil, nil
}

func isText(bs *imap.BodyStructure) bool {
	if !strings.EqualFold(bs.MIMEType, "text") {
		return false
	}
	return strings.EqualFold(bs.MIMESubType, "plain") || strings.EqualFold(bs.MIMESubType, "html")
}

// decodePart reads at most maxPartBytes of r and undoes the transfer encoding.
func decodePart(r io.Reader, encoding string) (string, error) {
	r = io.LimitReader(r, maxPartBytes)
	switch strings.ToLower(encoding) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// snippet collapses whitespace in body and cuts it to snippetLength runes.
func snippet(body string) string {
	s := strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(s) > snippetLength {
		s = string([]rune(s)[:snippetLength])
	}
	return s
}
