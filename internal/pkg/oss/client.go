package oss

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/gabriel-vasile/mimetype"

	"github.com/qs3c/fitness_go_server/config"
)

var ErrUnsupportedType = errors.New("不支持的文件类型")

// 图片目录
const (
	FolderProfiles = "profiles"
	FolderPosts    = "posts"
	FolderProducts = "products"
)

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// UploadImage 上传图片，按内容识别类型，返回访问 URL
func (c *Client) UploadImage(folder string, ownerID int64, data []byte, allowed []string) (string, error) {
	mt, err := DetectImage(data, allowed)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%d/%d%s", folder, ownerID, time.Now().UnixNano(), mt.Extension())
	if err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(mt.String())); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// Delete 删除文件
func (c *Client) Delete(objectKey string) error {
	if err := c.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}

// DetectImage 嗅探内容类型，不在白名单内返回 ErrUnsupportedType
func DetectImage(data []byte, allowed []string) (*mimetype.MIME, error) {
	mt := mimetype.Detect(data)
	for _, a := range allowed {
		if mt.Is(a) {
			return mt, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, strings.TrimSpace(mt.String()))
}
