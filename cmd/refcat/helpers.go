package main

import "strings"

// splitIdentifiers flattens command arguments into an ordered, deduplicated
// identifier list. Arguments may contain comma-separated groups, matching the
// interactive input format.
func splitIdentifiers(args []string) []string {
	var oids []string
	seen := make(map[string]struct{})
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			oid := strings.TrimSpace(part)
			if oid == "" {
				continue
			}
			if _, dup := seen[oid]; dup {
				continue
			}
			seen[oid] = struct{}{}
			oids = append(oids, oid)
		}
	}
	return oids
}
