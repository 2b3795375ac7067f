// file: utils/file.go
package utils

import (
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to destPath, creating parent directories and
// overwriting any existing file.
func CopyFile(src, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// CopyDir copies the regular files of srcDir into destDir (one level,
// subdirectories are walked recursively). Returns the number of files copied.
func CopyDir(srcDir, destDir string) (int, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, entry := range entries {
		src := filepath.Join(srcDir, entry.Name())
		dest := filepath.Join(destDir, entry.Name())
		if entry.IsDir() {
			n, err := CopyDir(src, dest)
			copied += n
			if err != nil {
				return copied, err
			}
			continue
		}
		if err := CopyFile(src, dest); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
