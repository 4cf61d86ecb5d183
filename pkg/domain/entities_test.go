package domain

import "testing"

func TestSpecimenFileNames(t *testing.T) {
	cases := []struct {
		name     string
		base     string
		basename string
		ext      string
	}{
		{"run/sub/Sample1.ab1", "Sample1.ab1", "Sample1", ".ab1"},
		{"Sample1.seq.txt", "Sample1.seq.txt", "Sample1.seq", ".txt"},
		{"README", "README", "README", ""},
		{".hidden", ".hidden", ".hidden", ""},
		{"dir/.hidden", ".hidden", ".hidden", ""},
	}
	for _, tc := range cases {
		f := SpecimenFile{Name: tc.name}
		if got := f.BaseFilename(); got != tc.base {
			t.Fatalf("BaseFilename(%q) = %q, want %q", tc.name, got, tc.base)
		}
		if got := f.Basename(); got != tc.basename {
			t.Fatalf("Basename(%q) = %q, want %q", tc.name, got, tc.basename)
		}
		if got := f.Extension(); got != tc.ext {
			t.Fatalf("Extension(%q) = %q, want %q", tc.name, got, tc.ext)
		}
	}
}

func TestProjectManifestArchiveNameAndCount(t *testing.T) {
	m := ProjectManifest{
		Project: ProjectRef{ID: "p", Name: "Alpha"},
		Items: []ManifestItem{
			{Bundle: SpecimenBundle{Files: []SpecimenFile{{Name: "a.ab1"}, {Name: "a.txt"}}}},
			{Bundle: SpecimenBundle{Files: []SpecimenFile{{Name: "b.ab1"}}}},
		},
	}
	if got := m.ArchiveName(); got != "Alpha_sequencing_files.zip" {
		t.Fatalf("unexpected archive name %q", got)
	}
	if got := m.FileCount(); got != 3 {
		t.Fatalf("expected 3 files, got %d", got)
	}
}

func TestRunMetadataDeclaresSample(t *testing.T) {
	run := RunMetadata{SampleIDs: []string{"Sample1", "Sample2"}}
	if !run.DeclaresSample("Sample1") {
		t.Fatalf("expected Sample1 declared")
	}
	if run.DeclaresSample("sample1") {
		t.Fatalf("declared-sample comparison is exact, not case folded")
	}
	if run.DeclaresSample("Sample9") {
		t.Fatalf("expected Sample9 undeclared")
	}
}
