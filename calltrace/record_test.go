package calltrace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestException_Decode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		nilExc  bool
		raised  bool
		message string
	}{
		{name: "缺失", input: `{"name":"f"}`, nilExc: true},
		{name: "null", input: `{"exception":null}`, nilExc: true},
		{name: "false", input: `{"exception":false}`},
		{name: "true", input: `{"exception":true}`, raised: true},
		{name: "字符串", input: `{"exception":"Function timed out"}`, raised: true, message: TimedOutMessage},
		{name: "空字符串", input: `{"exception":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			require.NoError(t, json.Unmarshal([]byte(tt.input), &rec))

			if tt.nilExc {
				assert.Nil(t, rec.Exception)
				assert.False(t, rec.Raised())
				return
			}
			require.NotNil(t, rec.Exception)
			assert.Equal(t, tt.raised, rec.Raised())
			assert.Equal(t, tt.message, rec.Exception.Text())
		})
	}
}

func TestException_DecodeInvalid(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"exception":42}`), &rec)
	assert.Error(t, err)
}

func TestException_Encode(t *testing.T) {
	data, err := json.Marshal(struct {
		A *Exception `json:"a"`
		B *Exception `json:"b"`
		C *Exception `json:"c"`
	}{False(), True(), Message(TimedOutMessage)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":false,"b":true,"c":"Function timed out"}`, string(data))
}

func TestRecord_NormalizeException(t *testing.T) {
	rec := &Record{}
	rec.NormalizeException()
	require.NotNil(t, rec.Exception)
	assert.False(t, rec.Raised())

	rec = &Record{Exception: True()}
	rec.NormalizeException()
	assert.True(t, rec.Raised())
}

func TestRecord_JSONShape(t *testing.T) {
	input := `{"name":"f","file":"a.js","line":10,"args":[1,2],"stack":[1],"exception":null}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(input), &rec))
	assert.Len(t, rec.Args, 2)
	assert.Len(t, rec.Stack, 1)

	rec.Method = MethodStart
	rec.NormalizeException()

	data, err := json.Marshal(&rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"f","file":"a.js","line":10,"args":[1,2],"stack":[1],"exception":false,"span":0,"method":"start"}`,
		string(data))
}

func TestRecord_EntryData(t *testing.T) {
	input := `{"line":20,"exception":true,"entryData":{"line":5,"exception":false}}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(input), &rec))
	require.NotNil(t, rec.EntryData)
	assert.Equal(t, 5, rec.EntryData.Line)
	assert.False(t, rec.EntryData.Raised())
}

func TestRecord_HasReturnValue(t *testing.T) {
	assert.False(t, (&Record{}).HasReturnValue())
	assert.False(t, (&Record{ReturnValue: json.RawMessage("null")}).HasReturnValue())
	assert.True(t, (&Record{ReturnValue: json.RawMessage(`"ok"`)}).HasReturnValue())
}

func TestRecord_PreservesSourceShape(t *testing.T) {
	input := `{"name":"f","file":"a.js","line":10,"args":[],"stack":[],"retLine":0,"exception":null,"extra":1,"meta":{"pid":7}}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(input), &rec))
	assert.NotNil(t, rec.Args)
	assert.Empty(t, rec.Args)
	assert.JSONEq(t, `1`, string(rec.Extra["extra"]))

	rec.Method = MethodStop
	rec.NormalizeException()

	data, err := json.Marshal(&rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"f","file":"a.js","line":10,"args":[],"stack":[],"retLine":0,"exception":false,"span":0,"method":"stop","extra":1,"meta":{"pid":7}}`,
		string(data))
}

func TestRecord_KnownFieldsOverrideExtra(t *testing.T) {
	rec := Record{
		Line:  3,
		Extra: map[string]json.RawMessage{"method": json.RawMessage(`"bogus"`), "tag": json.RawMessage(`"x"`)},
	}
	rec.Method = MethodStart

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"line":3,"span":0,"method":"start","tag":"x"}`, string(data))
}

func TestRecord_AbsentFieldsStayAbsent(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"line":1}`), &rec))

	data, err := json.Marshal(&rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"line":1,"span":0}`, string(data))
}
