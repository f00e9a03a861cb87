package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ceyewan/snowgen/xerrors"
)

// File 本地文件存储。写入采用临时文件 + rename，保证快照文件不出现半写状态。
type File struct {
	path string
}

// NewFile 创建文件存储，path 为快照文件路径，父目录必须存在。
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, xerrors.New("store: file path is empty")
	}
	return &File{path: path}, nil
}

// Save 原子写入快照文件。
func (f *File) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".snowgen-state-*")
	if err != nil {
		return xerrors.Wrap(err, "store: create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return xerrors.Wrap(err, "store: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return xerrors.Wrap(err, "store: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return xerrors.Wrap(err, "store: close temp file")
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return xerrors.Wrap(err, "store: rename snapshot")
	}
	return nil
}

// Load 读取快照文件，文件不存在时返回 (nil, false, nil)。
func (f *File) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, xerrors.Wrap(err, "store: read snapshot")
	}
	return data, true, nil
}
