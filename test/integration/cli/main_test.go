package cli_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/atlasocr/wasl/test/integration/cli/support"
)

var testContext *support.TestContext

// InitializeScenario wires a fresh TestContext and the step tables into
// each scenario, and tears the context down afterwards.
func InitializeScenario(sc *godog.ScenarioContext) {
	var err error
	testContext, err = support.NewTestContext()
	if err != nil {
		panic(fmt.Sprintf("test context setup failed: %v", err))
	}

	testContext.RegisterCLISteps(sc)
	testContext.RegisterServerSteps(sc)

	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if cleanupErr := testContext.Cleanup(); cleanupErr != nil {
			fmt.Printf("warning: scenario cleanup: %v\n", cleanupErr)
		}
		return ctx, nil
	})
}

// TestFeatures runs every feature file as its own subtest. GODOG_FORMAT
// and GODOG_TAGS adjust the run without editing code.
func TestFeatures(t *testing.T) {
	features, err := filepath.Glob(filepath.Join("features", "*.feature"))
	if err != nil {
		t.Fatalf("globbing features: %v", err)
	}
	if len(features) == 0 {
		t.Fatal("no feature files under features/")
	}

	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "pretty"
	}

	for _, feature := range features {
		name := strings.TrimSuffix(filepath.Base(feature), ".feature")
		t.Run(name, func(t *testing.T) {
			suite := godog.TestSuite{
				ScenarioInitializer: InitializeScenario,
				Options: &godog.Options{
					Format:   format,
					Tags:     os.Getenv("GODOG_TAGS"),
					Paths:    []string{feature},
					TestingT: t,
				},
			}
			if suite.Run() != 0 {
				t.Fatalf("feature %s had failing scenarios", feature)
			}
		})
	}
}
