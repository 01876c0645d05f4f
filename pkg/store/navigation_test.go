package store

import (
	"reflect"
	"testing"
)

func TestBuildNavigation(t *testing.T) {
	docs := []DocumentInfo{
		{Country: "france", Project: "FR-004", Name: "Bande de cheffes", File: "FR-004_interview_audio_2.m4a"},
		{Country: "colombia", Project: "CO-006", Name: "Urban farmers", File: "CO_006_audio.mp3"},
		{Country: "france", Project: "FR-004", Name: "Bande de cheffes", File: "FR-004_interview_audio_1.m4a"},
		{Country: "denmark", Project: "DK-021", Name: "Nordic Harvest", File: "DK_021_audio.mp3"},
		{Country: "colombia", Project: "CO-007", Name: "New project", File: "CO_007_audio.mp3"},
		// Duplicate rows must not duplicate leaves.
		{Country: "denmark", Project: "DK-021", Name: "Nordic Harvest", File: "DK_021_audio.mp3"},
	}

	got := BuildNavigation(docs)

	want := []CountryGroup{
		{Country: "colombia", Projects: []ProjectGroup{
			{Label: "CO-006 - Urban farmers", Records: []string{"CO_006_audio"}},
			{Label: "CO-007 - New project", Records: []string{"CO_007_audio"}},
		}},
		{Country: "denmark", Projects: []ProjectGroup{
			{Label: "DK-021 - Nordic Harvest", Records: []string{"DK_021_audio"}},
		}},
		{Country: "france", Projects: []ProjectGroup{
			{Label: "FR-004 - Bande de cheffes", Records: []string{"FR-004_interview_audio_1", "FR-004_interview_audio_2"}},
		}},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildNavigation() = %#v, want %#v", got, want)
	}
}

func TestBuildNavigationEmpty(t *testing.T) {
	if got := BuildNavigation(nil); len(got) != 0 {
		t.Errorf("BuildNavigation(nil) = %v, want empty", got)
	}
}

func TestRecordIDStripsExtension(t *testing.T) {
	doc := DocumentInfo{File: "FR-004_interview_audio_1.m4a"}
	if got := doc.RecordID(); got != "FR-004_interview_audio_1" {
		t.Errorf("RecordID() = %q", got)
	}
}
