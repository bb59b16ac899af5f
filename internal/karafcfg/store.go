// Package karafcfg edits the controller's Karaf and Tomcat
// configuration files in place. Every mutation is idempotent: the
// desired content is computed first and nothing is written when the
// file already matches.
package karafcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Store abstracts the controller config files with idempotent writes.
// All methods report whether the file content changed.
type Store interface {
	SetBootFeatures(features []string) (bool, error)
	SetLogLevels(levels map[string]string) (bool, error)
	SetRESTPort(port int) (bool, error)
	WriteTomcatUsers(username, password string) (bool, error)

	// BootFeatures reads the current featuresBoot list.
	BootFeatures() ([]string, error)

	// RESTPort reads the HTTP connector port.
	RESTPort() (int, error)

	// Backup copies each managed file that exists to a timestamped
	// .bak sibling and returns the backup paths.
	Backup() ([]string, error)
}

type store struct{ home string }

// New returns a filesystem-backed store rooted at the install dir.
func New(home string) Store { return &store{home: home} }

func (s *store) featuresPath() string {
	return filepath.Join(s.home, "etc", "org.apache.karaf.features.cfg")
}

func (s *store) loggingPath() string {
	return filepath.Join(s.home, "etc", "org.ops4j.pax.logging.cfg")
}

func (s *store) tomcatServerPath() string {
	return filepath.Join(s.home, "configuration", "tomcat-server.xml")
}

func (s *store) tomcatUsersPath() string {
	return filepath.Join(s.home, "configuration", "tomcat-users.xml")
}

// writeAtomic writes through a temp sibling + rename so a crash cannot
// leave a half-written config.
func writeAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (s *store) edit(path string, transform func(string) string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	content := string(b)
	desired := transform(content)
	if desired == content {
		return false, nil
	}
	if err := writeAtomic(path, desired); err != nil {
		return false, err
	}
	return true, nil
}

// propertyRe matches a property assignment including backslash
// continuation lines, as Karaf writes featuresBoot.
func propertyRe(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `\s*=[^\n]*(?:\\\r?\n[^\n]*)*`)
}

// setProperty replaces or appends a Java-properties assignment. The
// replacement is literal so $ in keys or values (inner-class logger
// names) survives untouched.
func setProperty(content, key, value string) string {
	line := key + " = " + value
	re := propertyRe(key)
	if re.MatchString(content) {
		return re.ReplaceAllLiteralString(content, line)
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n"
}

func (s *store) SetBootFeatures(features []string) (bool, error) {
	return s.edit(s.featuresPath(), func(content string) string {
		return setProperty(content, "featuresBoot", strings.Join(features, ","))
	})
}

func (s *store) BootFeatures() ([]string, error) {
	b, err := os.ReadFile(s.featuresPath())
	if err != nil {
		return nil, err
	}
	m := propertyRe("featuresBoot").FindString(string(b))
	if m == "" {
		return nil, nil
	}
	_, raw, _ := strings.Cut(m, "=")
	raw = strings.ReplaceAll(raw, "\\", "")
	raw = strings.ReplaceAll(raw, "\r", "")
	raw = strings.ReplaceAll(raw, "\n", "")
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *store) SetLogLevels(levels map[string]string) (bool, error) {
	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return s.edit(s.loggingPath(), func(content string) string {
		for _, name := range keys {
			content = setProperty(content, "log4j.logger."+name, levels[name])
		}
		return content
	})
}

// httpConnectorRe matches the HTTP connector element of the legacy
// Tomcat server config.
var httpConnectorRe = regexp.MustCompile(`(?s)<Connector\s[^>]*?/?>`)
var portAttrRe = regexp.MustCompile(`port="(\d+)"`)

func (s *store) SetRESTPort(port int) (bool, error) {
	return s.edit(s.tomcatServerPath(), func(content string) string {
		replaced := false
		return httpConnectorRe.ReplaceAllStringFunc(content, func(tag string) string {
			if replaced || !strings.Contains(tag, `protocol="HTTP/1.1"`) {
				return tag
			}
			replaced = true
			return portAttrRe.ReplaceAllString(tag, fmt.Sprintf(`port="%d"`, port))
		})
	})
}

func (s *store) RESTPort() (int, error) {
	b, err := os.ReadFile(s.tomcatServerPath())
	if err != nil {
		return 0, err
	}
	for _, tag := range httpConnectorRe.FindAllString(string(b), -1) {
		if !strings.Contains(tag, `protocol="HTTP/1.1"`) {
			continue
		}
		m := portAttrRe.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		return strconv.Atoi(m[1])
	}
	return 0, fmt.Errorf("no HTTP connector in %s", s.tomcatServerPath())
}

const tomcatUsersTemplate = `<?xml version='1.0' encoding='utf-8'?>
<tomcat-users>
  <role rolename="odl-admin"/>
  <user username=%q password=%q roles="odl-admin"/>
</tomcat-users>
`

func (s *store) WriteTomcatUsers(username, password string) (bool, error) {
	desired := fmt.Sprintf(tomcatUsersTemplate, username, password)
	path := s.tomcatUsersPath()
	if cur, err := os.ReadFile(path); err == nil && string(cur) == desired {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := writeAtomic(path, desired); err != nil {
		return false, err
	}
	return true, nil
}

func (s *store) Backup() ([]string, error) {
	ts := time.Now().Format("20060102-150405")
	var backups []string
	for _, src := range []string{s.featuresPath(), s.loggingPath(), s.tomcatServerPath()} {
		b, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return backups, err
		}
		dst := src + "." + ts + ".bak"
		if err := os.WriteFile(dst, b, 0o644); err != nil {
			return backups, err
		}
		backups = append(backups, dst)
	}
	return backups, nil
}
