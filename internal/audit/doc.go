// Package audit records what the gate decided: logins, logouts and the
// requests it refused. Events are queued on a [Dispatcher] and delivered to a
// [Sink] by one goroutine, so a slow sink never stalls request evaluation
// when the dispatcher drops on a full queue.
//
// Sinks: [ChannelSink], [JSONWriterSink], [LogSink], [NoOpSink] and any
// function through [SinkFunc].
//
// The package does not decide which events to emit; the gate does. It must
// not import goGate or a sibling internal package.
package audit
