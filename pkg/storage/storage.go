package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"siwes-logbook/config"
	pkgerrors "siwes-logbook/pkg/errors"
)

var (
	ErrFileTooLarge = pkgerrors.New(pkgerrors.KindValidation, "attachment is too large")
	ErrFileType     = pkgerrors.New(pkgerrors.KindValidation, "attachment type is not allowed")
)

const submissionDir = "submissions"

// Store 本地磁盘附件存储
// 存储路径形如 submissions/<uuid><ext>，对外以 media_url 前缀暴露
type Store struct {
	root     string
	mediaURL string
	maxBytes int64
	allowed  map[string]bool
}

// NewStore 创建附件存储，必要时创建根目录
func NewStore(cfg *config.StorageConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(cfg.MediaRoot, submissionDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[t] = true
	}
	mediaURL := cfg.MediaURL
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	return &Store{root: cfg.MediaRoot, mediaURL: mediaURL, maxBytes: cfg.MaxUploadBytes, allowed: allowed}, nil
}

// Root 存储根目录（用于静态文件路由）
func (s *Store) Root() string { return s.root }

// MediaURL 附件 URL 前缀
func (s *Store) MediaURL() string { return s.mediaURL }

// Save 校验并保存上传文件，返回相对存储路径
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect upload type: %w", err)
	}
	if len(s.allowed) > 0 && !s.isAllowed(mtype) {
		return "", ErrFileType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = mtype.Extension()
	}
	rel := path.Join(submissionDir, uuid.New().String()+ext)

	dst, err := os.OpenFile(s.abs(rel), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(s.abs(rel))
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(s.abs(rel))
		return "", fmt.Errorf("failed to close attachment: %w", err)
	}
	return rel, nil
}

func (s *Store) isAllowed(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if s.allowed[m.String()] {
			return true
		}
		// text/plain; charset=utf-8 之类带参数的类型
		if base, _, ok := strings.Cut(m.String(), ";"); ok && s.allowed[base] {
			return true
		}
	}
	return false
}

// Delete 删除附件，文件不存在视为成功
func (s *Store) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	if err := os.Remove(s.abs(rel)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URL 附件的站内访问路径，rel 为空返回空串
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.mediaURL + rel
}

// AbsoluteURL 结合站点 base_url 生成附件绝对地址
func (s *Store) AbsoluteURL(baseURL, rel string) string {
	u := s.URL(rel)
	if u == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" {
		return u
	}
	ref, err := url.Parse(u)
	if err != nil {
		return u
	}
	return base.ResolveReference(ref).String()
}

// abs 将相对路径限制在存储根目录内
func (s *Store) abs(rel string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(s.root, clean)
}
