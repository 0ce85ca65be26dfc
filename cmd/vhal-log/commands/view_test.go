package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/carprop/vhal-go/pkg/log"
)

func TestFormatCallEvent(t *testing.T) {
	ev := sampleEvents()[5]

	var buf bytes.Buffer
	formatEvent(&buf, ev)
	output := buf.String()

	for _, want := range []string{
		"2026-03-02T08:30:00.400000Z",
		"[client:bbbbbbbb]",
		"IN",
		"CALL",
		"SET_VALUES",
		"Status: INVALID_ARG",
		"Reason: duplicate request id 4",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatResultEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[2])
	output := buf.String()

	if !strings.Contains(output, "Source: TIMEOUT") {
		t.Errorf("expected timeout source, got: %s", output)
	}
	if !strings.Contains(output, "#1 TRY_AGAIN") {
		t.Errorf("expected per-request status, got: %s", output)
	}
}

func TestFormatPropertyEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[4])
	output := buf.String()

	if !strings.Contains(output, "Property SAMPLE") {
		t.Errorf("expected sample label, got: %s", output)
	}
	if !strings.Contains(output, propSpeed.String()+"/0 = [21.5]") {
		t.Errorf("expected value line, got: %s", output)
	}
}

func TestFormatHardwareErrorEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[6])
	output := buf.String()

	for _, want := range []string{"[client:hw]", "Message: bus off", "Status: TRY_AGAIN", "Context: GET_VALUES"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatSubscriptionEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[3])
	if !strings.Contains(buf.String(), propSpeed.String()+" at 10Hz") {
		t.Errorf("expected rate, got: %s", buf.String())
	}
}

func TestParseFlags(t *testing.T) {
	if d, err := ParseDirectionFlag("OUT"); err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirectionFlag(OUT) = %v, %v", d, err)
	}
	if _, err := ParseDirectionFlag("sideways"); err == nil {
		t.Error("ParseDirectionFlag(sideways) expected error")
	}
	if c, err := ParseCategoryFlag("Property"); err != nil || c != log.CategoryProperty {
		t.Errorf("ParseCategoryFlag(Property) = %v, %v", c, err)
	}
	if _, err := ParseCategoryFlag("frame"); err == nil {
		t.Error("ParseCategoryFlag(frame) expected error")
	}
	p, err := ParsePropertyFlag(propFan.String())
	if err != nil || p != propFan {
		t.Errorf("ParsePropertyFlag(%s) = %v, %v", propFan, p, err)
	}
	if _, err := ParsePropertyFlag("speed"); err == nil {
		t.Error("ParsePropertyFlag(speed) expected error")
	}
}

func TestRunView(t *testing.T) {
	path := writeTrace(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView: %v", err)
	}
	if n := strings.Count(buf.String(), "\n\n"); n != len(sampleEvents()) {
		t.Errorf("rendered %d events, want %d", n, len(sampleEvents()))
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := writeTrace(t, sampleEvents())
	out := log.DirectionOut

	var buf bytes.Buffer
	err := RunView(path, ViewFilter{ClientID: clientA, Direction: &out}, &buf)
	if err != nil {
		t.Fatalf("RunView: %v", err)
	}
	output := buf.String()
	if strings.Count(output, "[client:aaaaaaaa]") != 2 {
		t.Errorf("expected 2 outbound events of client A, got:\n%s", output)
	}
	if strings.Contains(output, "bbbbbbbb") {
		t.Errorf("client B leaked through filter:\n%s", output)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	if err := RunView("/nonexistent/trace.vlog", ViewFilter{}, &bytes.Buffer{}); err == nil {
		t.Error("RunView expected error for missing file")
	}
}
