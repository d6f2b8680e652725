package driver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const irExtension = ".gleamir.json"

// discoverModules walks root for every *.gleamir.json file, returning paths
// in a deterministic (lexical) order so build output and log lines don't
// jitter between runs on the same input tree.
func discoverModules(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, irExtension) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// outputPathFor places a module's output directly under outRoot, named after
// its module name (not the input document's path) with each "/" replaced by
// a double underscore and ".nix" appended, matching the join convention
// codegen uses to resolve sibling imports (see internal/codegen's
// importTargetPath).
func outputPathFor(outRoot, moduleName string) string {
	return filepath.Join(outRoot, strings.ReplaceAll(moduleName, "/", "__")+".nix")
}
