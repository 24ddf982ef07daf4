package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		name          string
		file          string
		ignoreUploads bool
		want          bool
	}{
		{"pdf", "tcc-final.pdf", false, true},
		{"docx", "artigo.docx", false, true},
		{"exe", "virus.exe", false, false},
		{"uppercase exe", "VIRUS.EXE", false, false},
		{"shell script", "deploy.sh", false, false},
		{"powershell", "run.ps1", false, false},
		{"ps1xml", "types.ps1xml", false, false},
		{"ts allowed by default", "video.ts", false, true},
		{"ts blocked when ignoring uploads", "video.ts", true, false},
		{"no extension", "README", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtensionAllowed(tt.file, tt.ignoreUploads); got != tt.want {
				t.Fatalf("ExtensionAllowed(%q, %v) = %v, want %v",
					tt.file, tt.ignoreUploads, got, tt.want)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"tcc.pdf", "application/pdf"},
		{"FOTO.PNG", "image/png"},
		{"dados.csv", "text/csv; charset=utf-8"},
		{"misterio.xyz", "application/octet-stream"},
		{"sem-extensao", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := ContentTypeFor(tt.file); got != tt.want {
			t.Fatalf("ContentTypeFor(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestStoredName(t *testing.T) {
	name := StoredName("relatorio.pdf")
	if !strings.HasSuffix(name, "-relatorio.pdf") {
		t.Fatalf("original name missing from %q", name)
	}
	// 36-char UUID prefix.
	if len(name) != 36+1+len("relatorio.pdf") {
		t.Fatalf("unexpected stored name length: %q", name)
	}

	if StoredName("relatorio.pdf") == name {
		t.Fatal("stored names must be unique per call")
	}

	// Path components in the client-supplied name are dropped.
	if got := StoredName("../../etc/passwd"); strings.Contains(got, "/") {
		t.Fatalf("stored name contains a path separator: %q", got)
	}
}

func TestDiskStorage(t *testing.T) {
	storage, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}

	written, err := storage.Save(
		"projetos/1/doc.txt", strings.NewReader("conteúdo"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written == 0 {
		t.Fatal("no bytes written")
	}

	abs, err := storage.Abs("projetos/1/doc.txt")
	if err != nil {
		t.Fatalf("Abs: %v", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "conteúdo" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := storage.Remove("projetos/1/doc.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(abs); !os.IsNotExist(err) {
		t.Fatal("file still exists after Remove")
	}
}

func TestDiskStorageRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	storage, err := NewDiskStorage(filepath.Join(root, "uploads"))
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}

	if _, err := storage.Abs("../outside.txt"); err == nil {
		t.Fatal("traversal outside the root must be rejected")
	}
	if _, err := storage.Save(
		"../outside.txt", strings.NewReader("x")); err == nil {
		t.Fatal("Save must refuse paths outside the root")
	}
}
