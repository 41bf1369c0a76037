package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions は MinIO (S3 互換ストレージ) への接続設定です。
type MinioOptions struct {
	// Endpoint は "http://localhost:9000" のような URL です。スキームが https の場合は TLS を使います。
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// MinioWriter は MinIO のバケットへ書き込む Writer です。
type MinioWriter struct {
	client *minio.Client
	bucket string
}

// NewMinioWriter は MinIO クライアントを生成し、バケットが無ければ作成します。
func NewMinioWriter(ctx context.Context, opts MinioOptions) (*MinioWriter, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("MinIO のバケット名は必須です")
	}
	endpoint, secure, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIO クライアントの作成に失敗しました: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("バケットの存在確認に失敗しました: %w", err)
	}
	if !exists {
		slog.InfoContext(ctx, "バケットが存在しないため作成します", "bucket", opts.Bucket)
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("バケットの作成に失敗しました: %w", err)
		}
	}

	return &MinioWriter{client: client, bucket: opts.Bucket}, nil
}

// Write は path をオブジェクト名として書き込みます。
func (w *MinioWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	objectName := ObjectName(path)
	info, err := w.client.PutObject(ctx, w.bucket, objectName, r, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("オブジェクトのアップロードに失敗しました (%s): %w", objectName, err)
	}
	slog.DebugContext(ctx, "オブジェクトをアップロードしました", "bucket", w.bucket, "object", objectName, "size", info.Size)
	return nil
}

// ObjectName はファイルパスをオブジェクト名に正規化します。
func ObjectName(path string) string {
	name := strings.ReplaceAll(path, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	return strings.TrimLeft(name, "/")
}

func parseEndpoint(raw string) (string, bool, error) {
	if !strings.Contains(raw, "://") {
		return raw, false, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("MinIO エンドポイントの解析に失敗しました: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("MinIO エンドポイントにホストがありません: %s", raw)
	}
	return u.Host, u.Scheme == "https", nil
}
