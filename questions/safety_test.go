package questions

import "testing"

func TestContainsCrisisSignal(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", false},
		{"I had a hard week but I'm okay", false},
		{"I want to end my life", true},
		{"SUICIDAL", true},
		{"lately I've thought I might hurt myself", true},
		{"some days I don't want to live", true},
		{"the project is dead on arrival", false},
	}
	for _, tc := range cases {
		if got := ContainsCrisisSignal(tc.text); got != tc.want {
			t.Errorf("ContainsCrisisSignal(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestCrisisResourcesPopulated(t *testing.T) {
	if len(CrisisResources.Resources) == 0 {
		t.Fatalf("crisis resources list is empty")
	}
	for _, r := range CrisisResources.Resources {
		if r.Name == "" || (r.URL == "" && r.Phone == "") {
			t.Fatalf("crisis resource missing name or contact: %+v", r)
		}
	}
}
