//go:build ignore

// build.go - ordersdash build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, test, clean, release, sample

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module     = "ordersdash"
	contracts  = module + "/pkg/contracts"
	binaryName = "ordersdash"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run build.go from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("goos", runtime.GOOS, "Target operating system for release builds")
	goarch := flag.String("goarch", runtime.GOARCH, "Target architecture for release builds")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorYellow, colorBlue, colorCyan = "", "", "", "", "", ""
	}

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose, GOOS: *goos, GOARCH: *goarch}

	var err error
	switch *target {
	case "all":
		err = buildBinary(ctx, false)
	case "test":
		err = runTests(ctx)
	case "clean":
		err = clean(ctx)
	case "release":
		err = buildRelease(ctx)
	case "sample":
		err = writeSample(ctx)
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        ordersdash - Build System          " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// ldflags stamps build time and commit into pkg/contracts
func ldflags(strip bool) string {
	flags := fmt.Sprintf("-X %s.BuildTime=%s -X %s.GitCommit=%s",
		contracts, time.Now().UTC().Format(time.RFC3339),
		contracts, gitCommit())
	if strip {
		flags = "-s -w " + flags
	}
	return flags
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		printWarning("git commit unavailable, stamping \"unknown\"")
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func binaryPath(ctx *BuildContext) string {
	name := binaryName
	if ctx.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(distDir, name)
}

func buildBinary(ctx *BuildContext, release bool) error {
	printInfo(fmt.Sprintf("Building %s for %s/%s...", binaryName, ctx.GOOS, ctx.GOARCH))

	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("failed to create dist directory: %w", err)
	}

	outputPath := binaryPath(ctx)
	args := []string{"build", "-ldflags", ldflags(release), "-o", outputPath}
	if release {
		args = append(args, "-trimpath")
	}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "./cmd/"+binaryName)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	if release {
		cmd.Env = append(cmd.Env, "CGO_ENABLED=0")
	}
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build %s: %w", binaryName, err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", outputPath, sizeMB))
	}
	return nil
}

func runTests(ctx *BuildContext) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go tests failed: %w", err)
	}

	printSuccess("All tests passed")
	return nil
}

func clean(ctx *BuildContext) error {
	printInfo("Cleaning build artifacts and logs...")
	for _, dir := range []string{distDir, filepath.Join(rootDir, "logs")} {
		if ctx.Verbose {
			fmt.Printf("Removing %s\n", dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clean %s: %w", dir, err)
		}
	}
	printSuccess("Build artifacts cleaned")
	return nil
}

func buildRelease(ctx *BuildContext) error {
	printInfo("Building release version...")
	if err := clean(ctx); err != nil {
		return err
	}
	if err := buildBinary(ctx, true); err != nil {
		return err
	}

	versionFile := filepath.Join(distDir, "VERSION.txt")
	content := fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nTarget: %s/%s\n",
		binaryName, gitCommit(), time.Now().Format("2006-01-02 15:04:05"), ctx.GOOS, ctx.GOARCH)
	if err := os.WriteFile(versionFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}

	printSuccess("Release build completed")
	return nil
}

// writeSample builds the binary and generates demo workbooks into dist/data
func writeSample(ctx *BuildContext) error {
	ctx.GOOS, ctx.GOARCH = runtime.GOOS, runtime.GOARCH
	if err := buildBinary(ctx, false); err != nil {
		return err
	}

	cmd := exec.Command(binaryPath(ctx), "sample", "--out", filepath.Join(distDir, "data"))
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sample generation failed: %w", err)
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-goos=OS] [-goarch=ARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all               Build ordersdash into dist/ (default)")
	fmt.Println("  test              Run all Go tests with the race detector")
	fmt.Println("  clean             Remove dist/ and logs/")
	fmt.Println("  release           Clean, then build a stripped, stamped binary")
	fmt.Println("  sample            Build, then write demo workbooks to dist/data")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  go run build.go -target=release -goos=windows -goarch=amd64")
	fmt.Println("  go run build.go -target=sample")
}
