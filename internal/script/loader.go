package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"quill/internal/debug"
)

// Script files are YAML documents mapping container names to bodies:
//
//	my_task:
//	  type: task
//	  script:
//	  - define greeting hello
//	  - repeat 3 as:i:
//	    - echo "<[greeting]> <[i]>"
//
// Loading is forgiving: a malformed container is reported and skipped, a
// malformed line still becomes a (stub) entry later.

var (
	containersMu  sync.RWMutex
	allContainers = make(map[string]*Container)
)

// RegisterContainer makes a loaded container visible to the run command and
// to re-loads.
func RegisterContainer(c *Container) {
	containersMu.Lock()
	defer containersMu.Unlock()
	allContainers[strings.ToLower(c.Name)] = c
}

// ContainerByName finds a registered container, case-insensitively.
func ContainerByName(name string) (*Container, bool) {
	containersMu.RLock()
	defer containersMu.RUnlock()
	c, ok := allContainers[strings.ToLower(name)]
	return c, ok
}

// ClearContainers drops all registered containers (used on reload).
func ClearContainers() {
	containersMu.Lock()
	defer containersMu.Unlock()
	allContainers = make(map[string]*Container)
}

// LoadDir loads every .yml/.yaml script under root and registers the
// resulting containers.
func LoadDir(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		containers, err := LoadFile(path)
		if err != nil {
			debug.Error("failed to load script file '%s': %v", path, err)
			return nil
		}
		for _, c := range containers {
			RegisterContainer(c)
			count++
		}
		return nil
	})
	return count, err
}

// LoadFile parses one script file into containers.
func LoadFile(path string) ([]*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	containers, err := LoadBytes(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	for _, c := range containers {
		c.FileName = path
	}
	return containers, nil
}

// LoadBytes parses script source into containers. The yaml node API is used
// directly so every command line keeps its source line number.
func LoadBytes(name string, data []byte) ([]*Container, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml in %s: %w", name, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: top level must be a mapping of container names", name)
	}
	var containers []*Container
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		bodyNode := root.Content[i+1]
		container, err := parseContainer(keyNode.Value, bodyNode)
		if err != nil {
			debug.Error("skipping container '%s' in %s: %v", keyNode.Value, name, err)
			continue
		}
		containers = append(containers, container)
	}
	return containers, nil
}

func parseContainer(name string, body *yaml.Node) (*Container, error) {
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("container body must be a mapping")
	}
	c := &Container{Name: name, Type: "task", Debug: true}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key := strings.ToLower(body.Content[i].Value)
		value := body.Content[i+1]
		switch key {
		case "type":
			c.Type = strings.ToLower(value.Value)
		case "debug":
			c.Debug = strings.EqualFold(value.Value, "true")
		case "script":
			if value.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("'script' must be a list of command lines")
			}
			c.Lines = parseLines(value)
		}
	}
	return c, nil
}

func parseLines(seq *yaml.Node) []Line {
	lines := make([]Line, 0, len(seq.Content))
	for _, item := range seq.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			if strings.TrimSpace(item.Value) == "" {
				continue
			}
			lines = append(lines, Line{Text: item.Value, LineNumber: item.Line})
		case yaml.MappingNode:
			// "- repeat 5:" with a nested list parses as a one-key mapping.
			if len(item.Content) >= 2 && item.Content[1].Kind == yaml.SequenceNode {
				lines = append(lines, Line{
					Text:       item.Content[0].Value,
					LineNumber: item.Content[0].Line,
					Inside:     parseLines(item.Content[1]),
				})
			}
		}
	}
	return lines
}
