package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlloop-go/errcode"
)

func TestSerializeLayout(t *testing.T) {
	m := NewMessage(0x1234)
	require.NoError(t, m.AddData([]byte("hi")))
	require.Equal(t, []byte{0x12, 0x34, 0x02, 'h', 'i'}, m.Serialize())
}

func TestSerializeLengthForEveryPayloadSize(t *testing.T) {
	for l := 0; l <= MaxPayload; l++ {
		m := NewMessage(uint16(0xA500 + l))
		require.NoError(t, m.AddData(bytes.Repeat([]byte{byte(l)}, l)))
		out := m.Serialize()
		require.Len(t, out, HeaderLen+l)
		require.Equal(t, byte(0xA5), out[0])
		require.Equal(t, byte(l), out[1])
		require.Equal(t, byte(l), out[2])
	}
}

func TestAddDataOverflowLeavesMessageUnchanged(t *testing.T) {
	m := NewMessage(7)
	full := bytes.Repeat([]byte{0xEE}, MaxPayload)
	require.NoError(t, m.AddData(full))

	before := m.Serialize()
	for i := 0; i < 2; i++ {
		err := m.AddData([]byte{1})
		require.ErrorIs(t, err, errcode.PayloadOver)
		require.Equal(t, before, m.Serialize())
	}
}

func TestAddDataIsAtomicWhenPartiallyFitting(t *testing.T) {
	m := NewMessage(1)
	require.NoError(t, m.AddData(make([]byte, 60)))
	require.ErrorIs(t, m.AddData(make([]byte, 5)), errcode.PayloadOver)
	require.Equal(t, 60, m.Len())
	require.NoError(t, m.AddData(make([]byte, 4)))
	require.Equal(t, MaxPayload, m.Len())
}

func TestAppendToAndReset(t *testing.T) {
	m := NewMessage(0x0102)
	require.NoError(t, m.AddData([]byte{9, 8}))
	var buf [MaxFrame]byte
	out := m.AppendTo(buf[:0])
	require.Equal(t, []byte{1, 2, 2, 9, 8}, out)
	require.Equal(t, 5, m.EncodedLen())

	m.Reset()
	require.Equal(t, 0, m.Len())
	require.Equal(t, []byte{1, 2, 0}, m.Serialize())
}

func TestDecode(t *testing.T) {
	m := NewMessage(0xBEEF)
	require.NoError(t, m.AddData([]byte("payload")))
	stream := append(m.Serialize(), 0xFF)

	got, n, err := Decode(stream)
	require.NoError(t, err)
	require.Equal(t, m.EncodedLen(), n)
	require.Equal(t, uint16(0xBEEF), got.ID)
	require.Equal(t, []byte("payload"), got.Payload())

	_, _, err = Decode([]byte{0x00, 0x01})
	assert.ErrorIs(t, err, errcode.FrameTruncated)
	_, _, err = Decode([]byte{0x00, 0x01, 0x03, 'a'})
	assert.ErrorIs(t, err, errcode.FrameTruncated)
	_, _, err = Decode([]byte{0x00, 0x01, MaxPayload + 1})
	assert.ErrorIs(t, err, errcode.PayloadOver)
}

func TestPayloadIsACopy(t *testing.T) {
	m := NewMessage(1)
	require.NoError(t, m.AddData([]byte("abc")))
	p := m.Payload()
	p[0] = 'X'
	assert.Equal(t, []byte("abc"), m.Payload())
	assert.Equal(t, []byte{0, 1, 3, 'a', 'b', 'c'}, m.Serialize())
}

func TestCommandIsAValue(t *testing.T) {
	c, err := SendMessage([]byte("abc"))
	require.NoError(t, err)
	cp := c
	cp.Data()[0] = 'X'
	assert.Equal(t, []byte("abc"), c.Data())
}

func TestCommandConstructors(t *testing.T) {
	g := SetGpio(13, true)
	assert.Equal(t, KindSetGpio, g.Kind())
	assert.Equal(t, uint8(13), g.Pin())
	assert.True(t, g.State())
	assert.Empty(t, g.Data())
	assert.Equal(t, "set_gpio", g.String())

	s, err := SendMessage([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, KindSendMessage, s.Kind())
	assert.Equal(t, []byte("abc"), s.Data())

	_, err = SendMessage(make([]byte, MaxCommandData+1))
	require.ErrorIs(t, err, errcode.PayloadOver)
	full, err := SendMessage(make([]byte, MaxCommandData))
	require.NoError(t, err)
	assert.Len(t, full.Data(), MaxCommandData)

	assert.Equal(t, KindReset, Reset().Kind())
	assert.Equal(t, "invalid", Command{}.String())
}

func TestSendWireCarriesEncodedMessage(t *testing.T) {
	m := NewMessage(0x0A0B)
	require.NoError(t, m.AddData(bytes.Repeat([]byte{1}, MaxPayload)))
	c := SendWire(&m)
	require.Equal(t, KindSendMessage, c.Kind())
	require.Equal(t, m.Serialize(), c.Data())
}
