package password

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist is a deny list of passwords. Immutable after construction;
// lookups are case-insensitive.
type Blacklist struct {
	data map[string]struct{}
}

// CommonPasswords is the default deny list applied at sign-up. Only
// entries that would pass the length policy are worth listing.
var CommonPasswords = NewBlacklist(
	"password",
	"password1",
	"12345678",
	"123456789",
	"1234567890",
	"qwertyuiop",
	"iloveyou",
	"sunshine",
	"superman",
	"contraseña",
)

// NewBlacklist builds a list from literal entries.
func NewBlacklist(entries ...string) *Blacklist {
	bl := &Blacklist{data: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		e = strings.TrimSpace(strings.ToLower(e))
		if e != "" {
			bl.data[e] = struct{}{}
		}
	}
	return bl
}

// LoadBlacklist lee un archivo con una entrada por línea. Líneas vacías
// y comentarios con "#" se ignoran. Path vacío devuelve una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	bl := &Blacklist{data: map[string]struct{}{}}
	if strings.TrimSpace(path) == "" {
		return bl, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(strings.ToLower(sc.Text()))
		if s != "" && !strings.HasPrefix(s, "#") {
			bl.data[s] = struct{}{}
		}
	}
	return bl, sc.Err()
}

// Contains reports whether pwd is on the list. Nil-safe.
func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}
