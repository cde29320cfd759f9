// Command catalog_parity compares the Go storefront's public surface against
// the legacy storefront host during cutover. Catalog targets are compared as
// normalized project sets (id, name, price, school, department), so envelope
// differences between the two stacks do not drown out real catalog drift.
// Other targets are diffed as JSON after dropping per-process fields.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
	// Compare selects the diff strategy: "projects" for catalog listings,
	// anything else falls back to normalized JSON equality.
	Compare string `json:"compare"`
}

type config struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Detail         []string
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

// projectFields is the part of a catalog entry that must survive the cutover
// byte-for-byte. Description is excluded: the legacy store truncates it.
type projectFields struct {
	Name       string
	Price      int64
	School     string
	Department string
}

// volatileFields differ between processes without being behavioral diffs.
var volatileFields = map[string]struct{}{
	"loadedAt":  {},
	"requestId": {},
	"meta":      {},
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go storefront base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy storefront base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "catalog_parity", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		comp := compareTarget(client, goBase, legacyBase, t)
		if comp.Error != nil {
			if t.Critical {
				breaking++
			}
		} else {
			if !comp.StatusMatch || !comp.BodyMatch {
				if t.Critical {
					breaking++
				} else {
					optionalDiff++
				}
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareTarget(client *http.Client, goBase, legacyBase string, tgt target) comparison {
	comp := comparison{Target: tgt}
	goResp, goDur, goErr := performRequest(client, goBase, tgt)
	legacyResp, legacyDur, legacyErr := performRequest(client, legacyBase, tgt)
	comp.DurationGo = goDur
	comp.DurationLegacy = legacyDur

	if goErr != nil {
		comp.Error = fmt.Errorf("go request failed: %w", goErr)
		return comp
	}
	if legacyErr != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return comp
	}

	comp.GoStatus = goResp.StatusCode
	comp.LegacyStatus = legacyResp.StatusCode
	comp.StatusMatch = comp.GoStatus == comp.LegacyStatus

	defer goResp.Body.Close()
	defer legacyResp.Body.Close()

	goBody, err := io.ReadAll(goResp.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read go body: %w", err)
		return comp
	}
	legacyBody, err := io.ReadAll(legacyResp.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read legacy body: %w", err)
		return comp
	}

	if tgt.Compare == "projects" {
		comp.BodyMatch, comp.Detail, comp.Error = compareProjects(goBody, legacyBody)
	} else {
		comp.BodyMatch = bodiesEqual(goBody, legacyBody)
	}

	return comp
}

func performRequest(client *http.Client, base string, tgt target) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

// compareProjects diffs two catalog listings as sets keyed by project id,
// reporting per-project drift rather than a bare boolean.
func compareProjects(goBody, legacyBody []byte) (bool, []string, error) {
	goSet, err := extractProjects(goBody)
	if err != nil {
		return false, nil, fmt.Errorf("parse go catalog: %w", err)
	}
	legacySet, err := extractProjects(legacyBody)
	if err != nil {
		return false, nil, fmt.Errorf("parse legacy catalog: %w", err)
	}

	var detail []string
	for id, legacy := range legacySet {
		got, ok := goSet[id]
		if !ok {
			detail = append(detail, fmt.Sprintf("missing in go: %s (%s)", id, legacy.Name))
			continue
		}
		if got != legacy {
			detail = append(detail, fmt.Sprintf("drift on %s: go=%+v legacy=%+v", id, got, legacy))
		}
	}
	for id, got := range goSet {
		if _, ok := legacySet[id]; !ok {
			detail = append(detail, fmt.Sprintf("extra in go: %s (%s)", id, got.Name))
		}
	}
	sort.Strings(detail)
	return len(detail) == 0, detail, nil
}

// extractProjects accepts either storefront shape: the Go envelope
// {"data":{"projects":[...]}}, the legacy {"projects":[...]} document, or a
// bare array.
func extractProjects(body []byte) (map[string]projectFields, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}

	list := findProjectList(root)
	if list == nil {
		return nil, errors.New("no project list in payload")
	}

	set := make(map[string]projectFields, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id := stringField(obj, "id")
		if id == "" {
			continue
		}
		set[id] = projectFields{
			Name:       stringField(obj, "name"),
			Price:      intField(obj, "price"),
			School:     stringField(obj, "school"),
			Department: stringField(obj, "department"),
		}
	}
	return set, nil
}

func findProjectList(v interface{}) []interface{} {
	switch val := v.(type) {
	case []interface{}:
		return val
	case map[string]interface{}:
		if inner, ok := val["projects"]; ok {
			if list, ok := inner.([]interface{}); ok {
				return list
			}
		}
		if inner, ok := val["data"]; ok {
			return findProjectList(inner)
		}
	}
	return nil
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func intField(obj map[string]interface{}, key string) int64 {
	f, _ := obj[key].(float64)
	return int64(f)
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range volatileFields {
			delete(val, k)
		}
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []comparison) {
	fmt.Println("Catalog Parity Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  Go Status: %d (%s)\n", res.GoStatus, res.DurationGo)
		fmt.Printf("  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
		for _, line := range res.Detail {
			fmt.Printf("  - %s\n", line)
		}
	}
}
