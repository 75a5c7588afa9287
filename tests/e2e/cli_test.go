package e2e_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/getuserd/userd/pkg/api"
	"github.com/getuserd/userd/pkg/config"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary builds the userd binary once for all testscript tests. The
// binary keeps its real name in its own directory so scripts can invoke
// plain "userd" off PATH.
func buildBinary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		binDir := filepath.Join(os.TempDir(), "userd_testscript")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			buildErr = err
			return
		}
		binaryPath = filepath.Join(binDir, "userd")
		// Build the binary
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/userd")
		if out, err := buildCmd.CombinedOutput(); err != nil {
			buildErr = err
			t.Logf("Failed to build CLI: %v\n%s", err, out)
		}
	})
	if buildErr != nil {
		t.Fatal(buildErr)
	}
	return binaryPath
}

func TestCLIIntegration(t *testing.T) {
	// Build the userd binary we will be invoking.
	bin := buildBinary(t)

	// Run testscript against all .txt files in testdata/. Scripts run in
	// parallel, so each one gets its own pair of servers: USERD_SERVER
	// points at a default-mode server, BASIC_URL at a basic-mode one.
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			dtoURL, stopDTO, err := startServer(config.ModeDTO)
			if err != nil {
				return err
			}
			env.Defer(stopDTO)

			basicURL, stopBasic, err := startServer(config.ModeBasic)
			if err != nil {
				return err
			}
			env.Defer(stopBasic)

			binDir := filepath.Dir(bin)
			env.Setenv("PATH", binDir+string(os.PathListSeparator)+env.Getenv("PATH"))
			env.Setenv("USERD_BIN", bin)
			env.Setenv("USERD_SERVER", dtoURL)
			env.Setenv("BASIC_URL", basicURL)
			return nil
		},
	})
}

// startServer launches an in-process API server in the given mode on a
// free port and returns its base URL plus a shutdown func.
func startServer(mode config.Mode) (string, func(), error) {
	port, err := getFreePort()
	if err != nil {
		return "", nil, err
	}

	cfg := config.DefaultConfig()
	cfg.Port = port
	cfg.Mode = mode

	srv := api.New(cfg)
	if err := srv.Start(); err != nil {
		return "", nil, err
	}
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	}

	baseURL := "http://localhost:" + strconv.Itoa(port)
	if err := waitForServer(baseURL + "/health"); err != nil {
		stop()
		return "", nil, err
	}
	return baseURL, stop, nil
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func waitForServer(url string) error {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server at %s never became healthy", url)
}

// TestMain acts as the main entrypoint. Testscript requires its own Main wrapper.
func TestMain(m *testing.M) {
	// Clean up the binary after all tests finish
	defer func() {
		if binaryPath != "" {
			os.RemoveAll(filepath.Dir(binaryPath))
		}
	}()

	os.Exit(testscript.RunMain(m, map[string]func() int{
		// We could wire standard Go commands here if we wanted,
		// but we are relying on compiling the binary and adding it to PATH.
	}))
}
