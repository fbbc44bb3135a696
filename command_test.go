package pva

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Command_String(t *testing.T) {
	assert.Equal(t, "DestroyRequest", CommandDestroyRequest.String())
	assert.Equal(t, "Command(0x99)", Command(0x99).String())
	assert.Equal(t, "EchoResponse", ControlEchoResponse.String())
	assert.Equal(t, "Control(0x09)", ControlCommand(9).String())
}

func Test_RequestTypes_String(t *testing.T) {
	assert.Equal(t, "NONE", PendingNone.String())
	assert.Equal(t, "DESTROY", PendingPureDestroy.String())
	assert.Equal(t, "QOS(01)", OperationQoS(QoSInit).String())
	assert.Equal(t, "DISCONNECTED", ConnectionDisconnected.String())
	assert.Equal(t, "ConnectionState(9)", ConnectionState(9).String())
	assert.Equal(t, "[IOID 0000002a]", RequestID(42).String())
	assert.True(t, (QoSInit | QoSDestroy).IsSet(QoSDestroy))
	assert.False(t, QoS(0).IsSet(QoSInit))
}
