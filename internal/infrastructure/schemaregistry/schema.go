// Package schemaregistry 负责在启动阶段从 Pub/Sub Schema Registry 拉取并解析 Avro Schema。
//
// 解析结果 *Schema 在进程生命周期内只构造一次，构造后只读，可在并发请求间共享。
package schemaregistry

import (
	"fmt"

	"github.com/linkedin/goavro/v2"
)

// 解码上限。goavro 按载荷声明的块计数预分配切片，默认上限为 MaxInt32，
// 几个字节的恶意载荷即可触发不可恢复的 OOM。
const (
	// MaxDecodeBlockCount 限制单个 array/map 块声明的元素数量。
	MaxDecodeBlockCount = 1 << 20
	// MaxDecodeBlockSize 限制单个 bytes/string 值的长度，与默认 push 请求体上限一致。
	MaxDecodeBlockSize = 10 << 20
)

func init() {
	goavro.MaxBlockCount = MaxDecodeBlockCount
	goavro.MaxBlockSize = MaxDecodeBlockSize
}

// Schema 是已解析的 Avro Schema，构造后不可变。
type Schema struct {
	name       string
	revisionID string
	definition string
	codec      *goavro.Codec
}

// ParseSchema 解析 Avro Schema 定义文本。
func ParseSchema(name, revisionID, definition string) (*Schema, error) {
	codec, err := goavro.NewCodec(definition)
	if err != nil {
		return nil, fmt.Errorf("schemaregistry: parse avro schema %q: %w", name, err)
	}
	return &Schema{
		name:       name,
		revisionID: revisionID,
		definition: definition,
		codec:      codec,
	}, nil
}

// Name 返回 Schema 在 Registry 中的完整资源名。
func (s *Schema) Name() string {
	return s.name
}

// RevisionID 返回 Schema 修订号，本地解析时可能为空。
func (s *Schema) RevisionID() string {
	return s.revisionID
}

// Definition 返回原始定义文本。
func (s *Schema) Definition() string {
	return s.definition
}

// Decode 按 Schema 解码无头（schemaless）Avro 二进制，返回原生值与未消费的剩余字节。
func (s *Schema) Decode(data []byte) (any, []byte, error) {
	return s.codec.NativeFromBinary(data)
}
