package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--data-dir", c.dir, "--env-file", ""}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	code, stdout, stderr := c.run(args...)
	if code != 0 {
		c.t.Fatalf("innkeeper %v exited %d: %s", args, code, stderr)
	}
	return stdout
}

func (c *cli) hotelRooms(id string) int {
	c.t.Helper()
	var out map[string]struct {
		Rooms int `json:"rooms"`
	}
	if err := json.Unmarshal([]byte(c.mustRun("hotel", "show", id)), &out); err != nil {
		c.t.Fatalf("decode hotel: %v", err)
	}
	return out[id].Rooms
}

func TestCLIReservationScenario(t *testing.T) {
	c := newCLI(t)
	c.mustRun("hotel", "create", "--id", "HO_2", "--name", "FiestaInn", "--location", "CDMX", "--rooms", "1")
	c.mustRun("reservation", "create", "--id", "Res_1", "--customer", "CT_2", "--hotel", "HO_2")
	if rooms := c.hotelRooms("HO_2"); rooms != 0 {
		t.Fatalf("expected 0 rooms, got %d", rooms)
	}

	code, _, stderr := c.run("reservation", "create", "--id", "Res_2", "--customer", "CT_2", "--hotel", "HO_2")
	if code != 1 || !strings.Contains(stderr, "no rooms available") {
		t.Fatalf("expected no rooms failure, code=%d stderr=%s", code, stderr)
	}

	c.mustRun("reservation", "cancel", "Res_1")
	if rooms := c.hotelRooms("HO_2"); rooms != 1 {
		t.Fatalf("expected 1 room, got %d", rooms)
	}
	code, _, stderr = c.run("reservation", "show", "Res_1")
	if code != 1 || !strings.Contains(stderr, `reservation "Res_1": not found`) {
		t.Fatalf("expected not found, code=%d stderr=%s", code, stderr)
	}

	raw, err := os.ReadFile(filepath.Join(c.dir, "hotels.json"))
	if err != nil {
		t.Fatalf("read hotels.json: %v", err)
	}
	if !strings.Contains(string(raw), "\n    \"HO_2\": {\n        \"name\": \"FiestaInn\"") {
		t.Fatalf("expected 4-space indented document, got %s", raw)
	}
}

func TestCLIGeneratesReservationID(t *testing.T) {
	c := newCLI(t)
	c.mustRun("hotel", "create", "--id", "HO_1", "--rooms", "2")
	out := c.mustRun("reservation", "create", "--customer", "CT_1", "--hotel", "HO_1")
	var created map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &created); err != nil || len(created) != 1 {
		t.Fatalf("unexpected output %q (%v)", out, err)
	}
	for id := range created {
		if len(id) != 36 {
			t.Fatalf("expected uuid reservation id, got %q", id)
		}
	}
}

func TestCLIModifyAndExport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("hotel", "create", "--id", "HO_1", "--name", "Homestay", "--location", "QRO", "--rooms", "10")
	c.mustRun("hotel", "modify", "HO_1", "--name", "FiestaInn")
	c.mustRun("customer", "create", "--id", "CT_1", "--name", "Carlos", "--email", "carlos@gmail.com")
	c.mustRun("customer", "modify", "CT_1", "--email", "charlie@gmail.com")
	c.mustRun("reservation", "create", "--id", "Res_1", "--customer", "CT_1", "--hotel", "HO_1")

	var snap snapshot
	if err := json.Unmarshal([]byte(c.mustRun("export")), &snap); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if h := snap.Hotels["HO_1"]; h.Name != "FiestaInn" || h.Location != "QRO" || h.Rooms != 9 {
		t.Fatalf("unexpected hotel %+v", h)
	}
	if cu := snap.Customers["CT_1"]; cu.Name != "Carlos" || cu.Email != "charlie@gmail.com" {
		t.Fatalf("unexpected customer %+v", cu)
	}
	if r := snap.Reservations["Res_1"]; r.CustomerID != "CT_1" || r.HotelID != "HO_1" {
		t.Fatalf("unexpected reservation %+v", r)
	}
}

func TestCLICorruptDocumentPolicy(t *testing.T) {
	c := newCLI(t)
	if err := os.WriteFile(filepath.Join(c.dir, "customers.json"), []byte("{oops"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	code, _, stderr := c.run("customer", "list")
	if code != 1 || !strings.Contains(stderr, "corrupt") {
		t.Fatalf("expected corrupt failure, code=%d stderr=%s", code, stderr)
	}
	out := c.mustRun("--on-corrupt", "discard", "--log-level", "error", "customer", "list")
	if strings.TrimSpace(out) != "{}" {
		t.Fatalf("expected empty listing, got %q", out)
	}
}

func TestCLIValidateCustomersAndMetricsFile(t *testing.T) {
	c := newCLI(t)
	metrics := filepath.Join(c.dir, "innkeeper.prom")
	c.mustRun("hotel", "create", "--id", "HO_1", "--rooms", "1")
	code, _, stderr := c.run("--validate-customers", "--metrics-file", metrics,
		"reservation", "create", "--id", "Res_1", "--customer", "CT_404", "--hotel", "HO_1")
	if code != 1 || !strings.Contains(stderr, `customer "CT_404": not found`) {
		t.Fatalf("expected missing customer, code=%d stderr=%s", code, stderr)
	}
	raw, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(raw), `innkeeper_operations_total{operation="create_reservation",status="error"} 1`) {
		t.Fatalf("unexpected metrics:\n%s", raw)
	}
}

func TestCLIUsageErrors(t *testing.T) {
	c := newCLI(t)
	if code, _, _ := c.run("hotel", "create"); code != 1 {
		t.Fatalf("expected missing --id to fail")
	}
	if code, _, stderr := c.run("--driver", "floppy", "hotel", "list"); code != 1 || !strings.Contains(stderr, "unknown storage driver") {
		t.Fatalf("expected driver error, code=%d stderr=%s", code, stderr)
	}
	if code, _, _ := c.run("hotel", "show"); code != 1 {
		t.Fatalf("expected arg count failure")
	}
}

func TestMainUsesExitFunc(t *testing.T) {
	var got int
	exitFunc = func(code int) { got = code }
	defer func() { exitFunc = os.Exit }()
	oldArgs := os.Args
	os.Args = []string{"innkeeper", "--env-file", "", "--driver", "memory", "hotel", "list"}
	defer func() { os.Args = oldArgs }()
	main()
	if got != 0 {
		t.Fatalf("expected exit 0, got %d", got)
	}
}
