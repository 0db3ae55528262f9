package render

import "github.com/cockroachdb/errors"

var (
	// ErrAssetNotFound 图片不存在
	ErrAssetNotFound = errors.New("render: asset not found")
	// ErrAssetDecode 图片无法解码
	ErrAssetDecode = errors.New("render: asset decode failed")
)

// AssetError 单张图片加载失败，始终在本地以占位图恢复
type AssetError struct {
	Key string
	Err error
}

func (e *AssetError) Error() string {
	return "render: load " + e.Key + ": " + e.Err.Error()
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
