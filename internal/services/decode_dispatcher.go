package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/bionicotaku/order-ingest/internal/models/vo"
)

// ErrDecodeFailure 表示载荷无法解码为一条记录。
var ErrDecodeFailure = errors.New("payload could not be decoded")

// DecodeError 携带两次解码尝试各自的失败原因，供日志排查。
//
// AvroErr 为空表示载荷是合法 JSON 但不是对象，未尝试 Avro。
// 调用方只应通过 errors.Is(err, ErrDecodeFailure) 判断结果，不依赖具体原因。
type DecodeError struct {
	JSONErr error
	AvroErr error
}

// FellBack 报告是否在 JSON 语法失败后尝试过 Avro。
func (e *DecodeError) FellBack() bool {
	return e != nil && e.AvroErr != nil
}

func (e *DecodeError) Error() string {
	switch {
	case e == nil:
		return ErrDecodeFailure.Error()
	case e.FellBack():
		msg := "payload is neither valid JSON nor valid Avro"
		if e.JSONErr != nil {
			msg += ": json: " + e.JSONErr.Error()
		}
		return msg + "; avro: " + e.AvroErr.Error()
	case e.JSONErr != nil:
		return "payload is JSON but not a record: " + e.JSONErr.Error()
	default:
		return ErrDecodeFailure.Error()
	}
}

// Is 让所有 DecodeError 都与 ErrDecodeFailure 匹配。
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailure
}

// Unwrap 暴露底层解码错误。
func (e *DecodeError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.JSONErr != nil {
		errs = append(errs, e.JSONErr)
	}
	if e.AvroErr != nil {
		errs = append(errs, e.AvroErr)
	}
	return errs
}

// attemptStatus 是单次解码尝试的结果分类。
type attemptStatus int

const (
	attemptOK attemptStatus = iota
	// attemptSyntaxError 表示字节本身不构成该格式，允许回退到下一种编码。
	attemptSyntaxError
	// attemptOtherError 表示格式合法但内容不可用，不再回退。
	attemptOtherError
)

func (s attemptStatus) String() string {
	switch s {
	case attemptOK:
		return "ok"
	case attemptSyntaxError:
		return "syntax_error"
	case attemptOtherError:
		return "other_error"
	default:
		return fmt.Sprintf("attemptStatus(%d)", int(s))
	}
}

type attemptResult struct {
	status attemptStatus
	record vo.Record
	err    error
}

func attemptOk(record vo.Record) attemptResult {
	return attemptResult{status: attemptOK, record: record}
}

func attemptFailed(status attemptStatus, err error) attemptResult {
	return attemptResult{status: status, err: err}
}

// DecodeDispatcher 依次尝试 JSON 与 Avro 解码。
//
// JSON 优先；仅当 JSON 在语法层面失败时才回退 Avro。Dispatcher 无内部状态，可并发使用。
type DecodeDispatcher struct {
	schema AvroSchema
}

// NewDecodeDispatcher 绑定启动阶段加载的 Avro Schema。
func NewDecodeDispatcher(schema AvroSchema) *DecodeDispatcher {
	return &DecodeDispatcher{schema: schema}
}

// Decode 解码一条原始载荷，成功时返回带编码标签的记录，否则返回 *DecodeError。
func (d *DecodeDispatcher) Decode(raw []byte) (*vo.DecodedRecord, error) {
	text := decodeJSON(raw)
	switch text.status {
	case attemptOK:
		return &vo.DecodedRecord{Encoding: vo.EncodingJSON, Record: text.record}, nil
	case attemptOtherError:
		return nil, &DecodeError{JSONErr: text.err}
	}

	binary := d.decodeAvro(raw)
	if binary.status == attemptOK {
		return &vo.DecodedRecord{Encoding: vo.EncodingAvro, Record: binary.record}, nil
	}
	return nil, &DecodeError{JSONErr: text.err, AvroErr: binary.err}
}

// decodeJSON 要求整段输入恰好是一个 JSON 值；空输入、尾随数据与非法 UTF-8 都属于语法错误。
func decodeJSON(raw []byte) attemptResult {
	if !utf8.Valid(raw) {
		return attemptFailed(attemptSyntaxError, errors.New("invalid UTF-8 in payload"))
	}

	var probe json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return attemptFailed(attemptSyntaxError, err)
		}
		return attemptFailed(attemptOtherError, err)
	}

	dec := json.NewDecoder(bytes.NewReader(probe))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return attemptFailed(attemptOtherError, err)
	}

	record, ok := value.(map[string]any)
	if !ok {
		return attemptFailed(attemptOtherError, fmt.Errorf("json value is %s, want object", jsonKind(value)))
	}
	return attemptOk(vo.Record(record))
}

// decodeAvro 按 Schema 读取一条记录；未被 Schema 消费的尾随字节被忽略。
func (d *DecodeDispatcher) decodeAvro(raw []byte) attemptResult {
	if d == nil || d.schema == nil {
		return attemptFailed(attemptOtherError, errors.New("avro schema not loaded"))
	}
	native, _, err := d.schema.Decode(raw)
	if err != nil {
		return attemptFailed(attemptOtherError, err)
	}
	record, ok := native.(map[string]any)
	if !ok {
		return attemptFailed(attemptOtherError, fmt.Errorf("avro value is %T, want record", native))
	}
	return attemptOk(vo.Record(record))
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}
