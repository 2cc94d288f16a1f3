package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"organizer/internal/routines"
)

// RoutinesJSON renders routine profiles as indented JSON suitable for
// re-import.
func RoutinesJSON(profiles []routines.Profile) ([]byte, error) {
	return json.MarshalIndent(profiles, "", "  ")
}

// RoutinesTXT renders routine profiles as separator-delimited blocks,
// one per profile, items in display order.
func RoutinesTXT(profiles []routines.Profile) string {
	blocks := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		var b strings.Builder
		fmt.Fprintf(&b, "Profile: %s\n", profile.ProfileType)
		fmt.Fprintf(&b, "Items (%d):\n\n", len(profile.Items))
		for _, item := range profile.Items {
			mark := "[ ]"
			if item.Completed {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "%s %s  %s", mark, item.Time, item.Title)
			if item.DurationMinutes > 0 {
				fmt.Fprintf(&b, " (%d min)", item.DurationMinutes)
			}
			if item.Tag != "" {
				fmt.Fprintf(&b, " #%s", item.Tag)
			}
			b.WriteString("\n")
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(blocks, "\n"+blockSeparator+"\n") + "\n"
}

// ImportRoutines parses an uploaded routines file. Only the JSON format
// carries enough structure to round trip; other extensions are rejected.
// Profile ids are cleared so existing rows are matched by profile type
// instead.
func ImportRoutines(filename string, data []byte) ([]routines.Profile, error) {
	ext := strings.ToLower(strings.TrimPrefix(filenameExt(filename), "."))
	if ext != "json" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	var profiles []routines.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("export: parse json routines: %w", err)
	}
	for i := range profiles {
		profiles[i].ID = 0
		routines.Renumber(profiles[i].Items)
	}
	return profiles, nil
}
