package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/InimaJin/MyShell/core/config"
	"github.com/InimaJin/MyShell/core/session"
	"github.com/InimaJin/MyShell/core/vos"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
)

type testShell struct {
	*Shell

	Dir    string
	Home   string
	Stdout *bytes.Buffer
	Stderr *bytes.Buffer
}

// newTestShell creates a shell rooted in a fresh directory. The process
// working directory is moved there too and restored afterwards because cd
// changes it.
func newTestShell(t *testing.T) *testShell {
	t.Helper()

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chdir(orig)
	})

	dir := evalTempDir(t)
	home := evalTempDir(t)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFs(afero.NewMemMapFs())
	if err != nil {
		t.Fatal(err)
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	return &testShell{
		Shell: &Shell{
			OS: &vos.OS{
				VIO: vos.NewVIOAdapter(strings.NewReader(""), stdout, stderr),
				Fs:  afero.NewOsFs(),
			},
			Session: &session.State{Cwd: dir, LastStatus: session.StatusOK},
			History: cfg,
			HomeDir: func() (string, error) {
				return home, nil
			},
			PromptTemplate: DefaultPrompt,
		},
		Dir:    dir,
		Home:   home,
		Stdout: stdout,
		Stderr: stderr,
	}
}

func evalTempDir(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func (ts *testShell) readFile(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(ts.Dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// goldenDir is resolved at package init because newTestShell moves the
// process working directory.
var goldenDir, _ = filepath.Abs(filepath.Join("testdata", "golden"))

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(
		t,
		goldie.WithFixtureDir(goldenDir),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)
}
