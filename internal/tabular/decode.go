package tabular

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrDecode tags archive and parse failures from Decode.
var ErrDecode = errors.New("decode error")

// Decode turns the raw bytes of a single-entry zip archive into a Table. The
// first archive member is used regardless of name. The member is parsed as
// semicolon-delimited text first; when that parse fails structurally the
// comma delimiter is tried. Exports predating the catalog's UTF-8 migration
// arrive as Windows-1251 and are transcoded before parsing.
func Decode(data []byte) (*Table, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open archive: %w", ErrDecode, err)
	}
	if len(reader.File) == 0 {
		return nil, fmt.Errorf("%w: archive has no members", ErrDecode)
	}

	member, err := reader.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open archive member: %w", ErrDecode, err)
	}
	defer member.Close()

	raw, err := io.ReadAll(member)
	if err != nil {
		return nil, fmt.Errorf("%w: read archive member: %w", ErrDecode, err)
	}

	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: transcode windows-1251: %w", ErrDecode, err)
		}
		raw = decoded
	}

	return parseDelimited(raw)
}

func parseDelimited(text []byte) (*Table, error) {
	semicolon, semiErr := parseWith(text, ';')
	// A comma-delimited file parses "cleanly" under ';' as one wide column,
	// so a single-column result falls through to the comma attempt.
	if semiErr == nil && len(semicolon.Columns) > 1 {
		return semicolon, nil
	}

	comma, commaErr := parseWith(text, ',')
	if commaErr == nil && len(comma.Columns) > 1 {
		return comma, nil
	}

	if semiErr == nil {
		return semicolon, nil
	}
	if commaErr == nil {
		return comma, nil
	}
	return nil, fmt.Errorf("%w: both delimiter attempts failed: %w", ErrDecode, commaErr)
}

func parseWith(text []byte, delimiter rune) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no rows")
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}
