// Package toc parses plain-text tables of contents into chapters.
//
// A book is described by two files. The brief file lists one chapter per
// line; the detailed file repeats the chapter lines and adds section and
// bullet lines under them.
package toc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// ParseBrief reads chapter lines and returns the chapters in file order.
// Non-chapter lines are skipped.
func ParseBrief(r io.Reader, bookID string) ([]domain.Chapter, error) {
	var chapters []domain.Chapter
	seen := make(map[int]struct{})

	err := scan(r, func(n int, line Line) error {
		if line.Kind != LineChapter {
			return nil
		}
		order, err := strconv.Atoi(line.Tokens[0])
		if err != nil {
			return fmt.Errorf("line %d: chapter number %q: %w", n, line.Tokens[0], err)
		}
		if _, dup := seen[order]; dup {
			return fmt.Errorf("line %d: duplicate chapter %d", n, order)
		}
		seen[order] = struct{}{}
		chapters = append(chapters, domain.Chapter{
			ID:     domain.ChapterID(bookID, order),
			BookID: bookID,
			Order:  order,
			Title:  line.Title(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

// detailState tracks the chapter being filled and the pending bullet.
type detailState struct {
	byOrder map[int]*domain.Chapter
	current *domain.Chapter
	bullet  []string
}

// ParseDetailed fills the sections and bullets of chapters from the
// detailed file. Bullets may wrap across lines and end at the first page
// number. Lines under a chapter that is not in chapters are ignored.
func ParseDetailed(r io.Reader, chapters []domain.Chapter) error {
	st := &detailState{byOrder: make(map[int]*domain.Chapter, len(chapters))}
	for i := range chapters {
		st.byOrder[chapters[i].Order] = &chapters[i]
	}

	return scan(r, func(_ int, line Line) error {
		switch line.Kind {
		case LineChapter:
			order, err := strconv.Atoi(line.Tokens[0])
			if err != nil {
				st.current = nil
			} else {
				st.current = st.byOrder[order]
			}
			st.bullet = st.bullet[:0]
		case LineSection:
			if st.current != nil {
				st.current.Sections = append(st.current.Sections, line.Title())
			}
		case LineBullet:
			if st.current != nil {
				st.addBullet(line.Tokens)
			}
		}
		return nil
	})
}

func (st *detailState) addBullet(tokens []string) {
	for _, tok := range tokens {
		if isNumber(tok) {
			if len(st.bullet) > 0 {
				st.current.Signals.Bullets = append(st.current.Signals.Bullets, strings.Join(st.bullet, " "))
			}
			st.bullet = st.bullet[:0]
			return
		}
		st.bullet = append(st.bullet, tok)
	}
}

// Parse reads both files of a book.
func Parse(brief, detailed io.Reader, bookID string) ([]domain.Chapter, error) {
	chapters, err := ParseBrief(brief, bookID)
	if err != nil {
		return nil, fmt.Errorf("brief contents: %w", err)
	}
	if err := ParseDetailed(detailed, chapters); err != nil {
		return nil, fmt.Errorf("detailed contents: %w", err)
	}
	return chapters, nil
}

func scan(r io.Reader, fn func(n int, line Line) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := Classify(sc.Text())
		if line.Kind == LineBlank {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}
