//go:build windows

package platform

import (
	"fmt"
	"io/fs"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/windows"

	"github.com/bamsammich/fsindex/internal/record"
)

func (*local) Flavor() Flavor { return Windows }

// HiddenAttr reports FILE_ATTRIBUTE_HIDDEN or FILE_ATTRIBUTE_SYSTEM.
func (*local) HiddenAttr(path string) (bool, error) {
	attrs, err := fileAttributes(path)
	if err != nil {
		return false, err
	}
	return attrs&(windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM) != 0, nil
}

// ReparseOther reports a reparse point that Go does not surface as a
// symlink, which is how mount points and junctions appear.
func (*local) ReparseOther(path string, lstat fs.FileInfo) bool {
	if lstat.Mode()&fs.ModeSymlink != 0 {
		return false
	}
	if d, ok := lstat.Sys().(*syscall.Win32FileAttributeData); ok {
		return d.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
	}
	attrs, err := fileAttributes(path)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
}

func (*local) DeviceID(path string) (uint64, error) {
	fi, err := handleInfo(path)
	if err != nil {
		return 0, err
	}
	return uint64(fi.VolumeSerialNumber), nil
}

// Owner returns DOMAIN\account for the owner SID, or the SID string when
// the account cannot be resolved.
func (l *local) Owner(path string, _ fs.FileInfo) (string, error) {
	sd, err := windows.GetNamedSecurityInfo(path, windows.SE_FILE_OBJECT, windows.OWNER_SECURITY_INFORMATION)
	if err != nil {
		return "", fmt.Errorf("read security info %s: %w", path, err)
	}
	sid, _, err := sd.Owner()
	if err != nil {
		return "", fmt.Errorf("read owner %s: %w", path, err)
	}
	if sid == nil {
		return "", fmt.Errorf("read owner %s: %w", path, ErrUnsupported)
	}
	key := sid.String()
	return l.owners.lookup(key, func() (string, error) {
		account, domain, _, err := sid.LookupAccount("")
		if err != nil {
			return key, nil //nolint:nilerr // SID string is the generic owner name
		}
		if domain == "" {
			return account, nil
		}
		return domain + `\` + account, nil
	})
}

func (*local) FileID(path string, _ fs.FileInfo) (string, error) {
	fi, err := handleInfo(path)
	if err != nil {
		return "", err
	}
	idx := uint64(fi.FileIndexHigh)<<32 | uint64(fi.FileIndexLow)
	return fmt.Sprintf("(vol=%x,idx=%x)", fi.VolumeSerialNumber, idx), nil
}

func (*local) Times(_ string, info fs.FileInfo) Times {
	t := Times{Modified: record.Some(info.ModTime())}
	d, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return t
	}
	if ft := d.CreationTime; ft.Nanoseconds() != 0 {
		t.Created = record.Some(time.Unix(0, ft.Nanoseconds()))
	}
	if ft := d.LastAccessTime; ft.Nanoseconds() != 0 {
		t.Accessed = record.Some(time.Unix(0, ft.Nanoseconds()))
	}
	return t
}

// Store returns the volume root and filesystem name backing path.
func (*local) Store(path string) (StoreInfo, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return StoreInfo{}, err
	}
	root := make([]uint16, windows.MAX_PATH+1)
	if err := windows.GetVolumePathName(p, &root[0], uint32(len(root))); err != nil {
		return StoreInfo{}, fmt.Errorf("volume path %s: %w", path, err)
	}
	label := make([]uint16, windows.MAX_PATH+1)
	fsName := make([]uint16, windows.MAX_PATH+1)
	if err := windows.GetVolumeInformation(&root[0], &label[0], uint32(len(label)),
		nil, nil, nil, &fsName[0], uint32(len(fsName))); err != nil {
		return StoreInfo{}, fmt.Errorf("volume information %s: %w", path, err)
	}
	name := windows.UTF16ToString(label)
	if strings.TrimSpace(name) == "" {
		name = windows.UTF16ToString(root)
	}
	return StoreInfo{Name: name, Type: windows.UTF16ToString(fsName)}, nil
}

func fileAttributes(path string) (uint32, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return 0, fmt.Errorf("file attributes %s: %w", path, err)
	}
	return attrs, nil
}

func handleInfo(path string) (*windows.ByHandleFileInformation, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(p, 0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer windows.CloseHandle(h) //nolint:errcheck // read-only handle

	var fi windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &fi); err != nil {
		return nil, fmt.Errorf("file information %s: %w", path, err)
	}
	return &fi, nil
}
