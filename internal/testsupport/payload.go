package testsupport

import (
	"archive/zip"
	"bytes"
	"testing"
)

// ZipMember is one named file inside a generated zip payload.
type ZipMember struct {
	Name string
	Data []byte
}

// ZipPayload builds a single-member zip archive in memory.
func ZipPayload(t testing.TB, name string, data []byte) []byte {
	t.Helper()
	return ZipPayloadMembers(t, []ZipMember{{Name: name, Data: data}})
}

// ZipPayloadMembers builds a zip archive with the given members in order.
// Passing nil produces a valid archive with no members.
func ZipPayloadMembers(t testing.TB, members []ZipMember) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, member := range members {
		entry, err := writer.Create(member.Name)
		if err != nil {
			t.Fatalf("create zip member %s: %v", member.Name, err)
		}
		if _, err := entry.Write(member.Data); err != nil {
			t.Fatalf("write zip member %s: %v", member.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}
