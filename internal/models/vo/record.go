// Package vo 定义视图对象（View Objects），用于在服务层与传输层之间传递解码后的业务数据。
package vo

// Encoding 标识载荷实际匹配的编码格式。
type Encoding string

const (
	// EncodingJSON 表示自描述的 JSON 文本。
	EncodingJSON Encoding = "JSON"
	// EncodingAvro 表示依赖 Schema 的 Avro 二进制。
	EncodingAvro Encoding = "AVRO"
)

// String 返回编码标签。
func (e Encoding) String() string {
	return string(e)
}

// FulfillmentStatusField 是解码后唯一被改写的字段。
const FulfillmentStatusField = "fulfillment_status"

// FulfillmentPending 是入站订单的初始履约状态。
const FulfillmentPending = "PENDING"

// Record 是解码后的记录，字段名到值的映射。
//
// JSON 数字保留为 json.Number，Avro 值使用 goavro 的原生表示。
type Record map[string]any

// DecodedRecord 将记录与其来源编码绑定，编码标签在解码时确定且只设置一次。
type DecodedRecord struct {
	Encoding Encoding `json:"encoding"`
	Record   Record   `json:"record"`
}
