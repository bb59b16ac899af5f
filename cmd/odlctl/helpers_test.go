package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	"github.com/opendaylight-tools/odlctl/internal/resource"
)

func TestConfirm_YesFlag(t *testing.T) {
	origYes := flagYes
	defer func() { flagYes = origYes }()
	flagYes = true

	d, _ := testDeps(nil, nil, nil, nil)
	ok, err := confirm(d, "Proceed?")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want true, nil", ok, err)
	}
}

func TestConfirm_NonInteractiveFails(t *testing.T) {
	origYes := flagYes
	defer func() { flagYes = origYes }()
	flagYes = false

	d, _ := testDeps(nil, nil, nil, nil)
	d.Prompter = &mockPrompter{interactive: false}

	_, err := confirm(d, "Proceed?")
	if err == nil {
		t.Fatal("expected error")
	}
	var ec *exitcodes.ErrorWithCode
	if !errors.As(err, &ec) || ec.Code != exitcodes.PreconditionFailed {
		t.Errorf("err = %v, want precondition failure", err)
	}
}

func TestConfirm_Responses(t *testing.T) {
	origYes := flagYes
	defer func() { flagYes = origYes }()
	flagYes = false

	cases := []struct {
		response string
		want     bool
	}{
		{"y", true},
		{"Y", true},
		{"yes", true},
		{" YES ", true},
		{"n", false},
		{"", false},
		{"nope", false},
	}
	for _, tc := range cases {
		d, _ := testDeps(nil, nil, nil, nil)
		d.Prompter = &mockPrompter{responses: []string{tc.response}, interactive: true}
		ok, err := confirm(d, "Proceed?")
		if err != nil {
			t.Fatalf("response %q: %v", tc.response, err)
		}
		if ok != tc.want {
			t.Errorf("confirm(%q) = %v, want %v", tc.response, ok, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []resource.Result{
		{Name: "a", Status: resource.StatusApplied},
		{Name: "b", Status: resource.StatusUnchanged},
		{Name: "c", Status: resource.StatusUnchanged},
		{Name: "d", Status: resource.StatusFailed, Error: "boom"},
	}
	applied, unchanged, failed := summarize(results)
	if applied != 1 || unchanged != 2 || failed != 1 {
		t.Errorf("summarize = %d/%d/%d", applied, unchanged, failed)
	}
}

func TestPlanProgress_WritesLines(t *testing.T) {
	origOutput, origQuiet := flagOutput, flagQuiet
	defer func() { flagOutput, flagQuiet = origOutput, origQuiet }()
	flagOutput = "text"
	flagQuiet = false

	d, out := testDeps(nil, nil, nil, nil)
	progress := planProgress(d)
	if progress == nil {
		t.Fatal("expected progress func")
	}
	progress(resource.Result{Name: "package:java", Status: resource.StatusApplied})
	progress(resource.Result{Name: "file:restPort", Status: resource.StatusUnchanged})
	progress(resource.Result{Name: "service:start", Status: resource.StatusFailed, Error: "boom"})

	text := out.String()
	for _, want := range []string{"package:java", "file:restPort", "service:start", "boom"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPlanProgress_SilencedModes(t *testing.T) {
	origOutput, origQuiet := flagOutput, flagQuiet
	defer func() { flagOutput, flagQuiet = origOutput, origQuiet }()

	d, _ := testDeps(nil, nil, nil, nil)

	flagOutput, flagQuiet = "json", false
	if planProgress(d) != nil {
		t.Error("json output should suppress streaming progress")
	}
	flagOutput, flagQuiet = "text", true
	if planProgress(d) != nil {
		t.Error("quiet mode should suppress streaming progress")
	}
}
