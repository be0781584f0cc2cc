package local

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// randSuffix returns n random base-36 characters.
func randSuffix(n int) string {
	var b strings.Builder
	for b.Len() < n {
		for _, x := range uuid.New() {
			if b.Len() == n {
				break
			}
			b.WriteByte(base36[int(x)%len(base36)])
		}
	}
	return b.String()
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// newUserID returns user_<unix millis>_<9 chars>.
func newUserID(now time.Time) string {
	return "user_" + millis(now) + "_" + randSuffix(9)
}

// courseSlug lowercases name, keeps [a-z0-9] and cuts at 10 characters.
func courseSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 10 {
				break
			}
		}
	}
	return b.String()
}

// newCourseID returns <slug>_<unix millis>_<4 chars>.
func newCourseID(name string, now time.Time) string {
	return courseSlug(name) + "_" + millis(now) + "_" + randSuffix(4)
}
