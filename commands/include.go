package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shibukawa/mlpproc/location"
	"github.com/shibukawa/mlpproc/preprocessor"
)

// ResolveInclude finds path as given, then next to the including file and
// finally in each include directory. It returns the first existing candidate,
// or path itself when none exists.
func ResolveInclude(path, includingFile string, includePaths []string) string {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		if includingFile != "" && includingFile != location.NoFile {
			candidates = append(candidates, filepath.Join(filepath.Dir(includingFile), path))
		}
		for _, dir := range includePaths {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return path
}

func cmdInclude(p *preprocessor.Preprocessor, _ location.Position, args string) (string, error) {
	const usage = "include [-v|--verbatim] [-b|--begin <str>] [-e|--end <str>] <file_path>"
	flags := newFlagSet("include")
	verbatim := flags.BoolP("verbatim", "v", false, "include the file without parsing it")
	begin := flags.StringP("begin", "b", "", "begin token of the included file")
	end := flags.StringP("end", "e", "", "end token of the included file")
	rest, err := parseFlags(p, flags, args, usage)
	if err != nil {
		return "", err
	}
	if len(rest) != 1 {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid argument.\nusage: %s", usage)
	}

	path := ResolveInclude(rest[0], p.Context().Top().File.Name, p.IncludeSearchPath())
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", p.SendError(preprocessor.ErrFileNotFound, "file not found %q.", rest[0])
	case errors.Is(err, fs.ErrPermission):
		return "", p.SendError(preprocessor.ErrFileNotFound, "can't open file %q, permission denied.", path)
	case err != nil:
		return "", p.SendError(preprocessor.ErrFileNotFound, "can't open file %q.\n%s", path, err)
	}
	contents := string(data)
	if *verbatim {
		return contents, nil
	}

	saved := p.Delimiters()
	if err := p.SetDelimiters(saved.With(*begin, *end)); err != nil {
		return "", p.SendError(preprocessor.ErrInvalidArgument, "invalid tokens for included file: %s.", err)
	}
	defer func() {
		_ = p.SetDelimiters(saved)
	}()

	p.Context().New(location.NewFile(path, contents), 0, "in included file")
	defer p.Context().Pop()

	return p.Parse(contents)
}
