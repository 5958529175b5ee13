package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testRegister struct {
	value  uint16
	resets int
}

func (tr *testRegister) ReadIo(pa uint32, access Access) (data uint16, err error) {
	data = tr.value
	return
}

func (tr *testRegister) WriteIo(pa uint32, data uint16, access Access) (err error) {
	if access == WRITEB {
		data = MergeByte(pa, tr.value, data)
	}
	tr.value = data
	return
}

func (tr *testRegister) Reset() {
	tr.resets++
	tr.value = 0
}

func TestPageAttach(t *testing.T) {
	assert := assert.New(t)

	pg := &Page{}
	reg := &testRegister{}

	assert.NoError(pg.Attach("a", 017777000, 2, reg))
	assert.NoError(pg.Attach("b", 017770000, 010, reg))
	assert.ErrorIs(pg.Attach("low", 017750000, 2, reg), ErrWindowRange)
	assert.ErrorIs(pg.Attach("high", 017777776, 4, reg), ErrWindowRange)
	assert.ErrorIs(pg.Attach("empty", 017777000, 0, reg), ErrWindowRange)

	var conflict *ErrWindowConflict
	assert.ErrorAs(pg.Attach("c", 017770004, 2, reg), &conflict)
	assert.Equal("c", conflict.Name)
	assert.Equal("b", conflict.Other)

	var names []string
	for name := range pg.Devices() {
		names = append(names, name)
	}
	assert.Equal([]string{"b", "a"}, names)

	pg.Reset()
	assert.Equal(1, reg.resets)
}

func TestPageAccess(t *testing.T) {
	assert := assert.New(t)

	pg := &Page{}
	reg := &testRegister{}
	assert.NoError(pg.Attach("reg", 017777000, 2, reg))

	assert.NoError(pg.WriteIo(017777000, 0123456, WRITE))
	data, err := pg.ReadIo(017777000, READ)
	assert.NoError(err)
	assert.Equal(uint16(0123456), data)

	assert.NoError(pg.WriteIo(017777001, 0377, WRITEB))
	data, err = pg.ReadIo(017777000, READ)
	assert.NoError(err)
	assert.Equal(uint16(0177400|(0123456&0377)), data)

	_, err = pg.ReadIo(017777002, READ)
	assert.ErrorIs(err, ErrNxm)
	_, err = pg.ReadIo(017760000, READ)
	assert.ErrorIs(err, ErrNxm)
	assert.ErrorIs(pg.WriteIo(017776776, 0, WRITE), ErrNxm)
}

func TestMergeByte(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0x12cd), MergeByte(0, 0x1234, 0xabcd))
	assert.Equal(uint16(0xcd34), MergeByte(1, 0x1234, 0xcd))
}
