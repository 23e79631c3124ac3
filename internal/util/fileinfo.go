package util

import (
	"fmt"
	"os"
	"syscall"
)

// FileInfo contains extended file information, including modification time, size, and inode number.
type FileInfo struct {
	ModTime int64  // Last modification time, nanoseconds
	Size    int64  // File size in bytes
	Inode   uint64 // Inode number (unique file identifier on Unix-like systems)
}

// GetFileInfo retrieves detailed file information, including inode number.
// Supported on Linux and macOS.
func GetFileInfo(filepath string) (*FileInfo, error) {
	stat, err := os.Stat(filepath)
	if err != nil {
		return nil, err
	}
	return fileInfoFromStat(filepath, stat)
}

// GetOpenFileInfo is GetFileInfo for an already opened file.
func GetOpenFileInfo(file *os.File) (*FileInfo, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return fileInfoFromStat(file.Name(), stat)
}

func fileInfoFromStat(name string, stat os.FileInfo) (*FileInfo, error) {
	// Retrieve system-specific stat information (for inode, etc.)
	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("failed to get file system information: %s", name)
	}
	return &FileInfo{
		ModTime: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
		Inode:   sysStat.Ino,
	}, nil
}

// Version identifies this revision of the file's content.
func (f *FileInfo) Version() string {
	return fmt.Sprintf("%d:%d:%d", f.Inode, f.Size, f.ModTime)
}
