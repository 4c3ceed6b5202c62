package server

import (
	"context"
	"errors"
	"io"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/internal/loracom"
	"loracom/pkg/protocol"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Largest accepted command body
const maxCommandBody int64 = 512

// Current send and done queues
func handleQueue(baseCtx context.Context, node Node, serverResponder http.ResponseWriter) {
	snapshot := node.Snapshot()

	view := JQueue{
		State:   snapshot.State.String(),
		NextSeq: snapshot.NextSeq,
		Live:    make([]JQueued, 0, len(snapshot.Live)),
		Done:    make([]JQueued, 0, len(snapshot.Done)),
	}
	for _, entry := range snapshot.Live {
		view.Live = append(view.Live, convertQueued(entry))
	}
	for _, entry := range snapshot.Done {
		view.Done = append(view.Done, convertQueued(entry))
	}
	jResp(baseCtx, serverResponder, view)
}

func convertQueued(entry loracom.QueuedMessage) (out JQueued) {
	out = JQueued{
		Sequence:     entry.Msg.SequenceID,
		Type:         entry.Msg.Type.String(),
		Receiver:     entry.Msg.ReceiverID,
		Length:       entry.Msg.Length,
		RetryCount:   entry.RetryCount,
		RequiresAck:  entry.RequiresAck,
		Acknowledged: entry.Acknowledged,
		Failed:       entry.Failed,
	}
	if !entry.LastSendTime.IsZero() {
		out.LastSend = entry.LastSendTime.Format(time.RFC3339Nano)
	}
	return
}

// Delivery state of /outcome/<seq>
func handleOutcome(baseCtx context.Context, node Node, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	rawSeq := strings.Trim(strings.TrimPrefix(clientRequest.URL.Path, global.OutcomePath), "/")
	seq, err := strconv.ParseUint(rawSeq, 10, 8)
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	outcome := node.Outcome(uint8(seq))
	jResp(baseCtx, serverResponder, JOutcome{Sequence: uint8(seq), Outcome: outcome.String()})
}

// Relays a "<id> <param>" text command to the receiver named by the "to" form value (default broadcast)
func handleCommand(baseCtx context.Context, node Node, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	receiver := protocol.BroadcastID
	rawReceiver := clientRequest.FormValue("to")
	if rawReceiver != "" {
		id, err := strconv.ParseUint(rawReceiver, 10, 8)
		if err != nil {
			serverResponder.WriteHeader(http.StatusBadRequest)
			return
		}
		receiver = uint8(id)
	}

	body, err := io.ReadAll(io.LimitReader(clientRequest.Body, maxCommandBody+1))
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}
	if int64(len(body)) > maxCommandBody {
		serverResponder.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}
	line := strings.TrimSpace(string(body))

	seq, err := node.SubmitCommand(line, receiver)
	if err != nil {
		logctx.LogEvent(baseCtx, global.VerbosityProgress, global.WarnLog,
			"Rejected command %q for device %d: %v\n", line, receiver, err)

		status := http.StatusBadRequest
		if errors.Is(err, loracom.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		jRespStatus(baseCtx, serverResponder, status, Jerror{Msg: err.Error()})
		return
	}

	jRespStatus(baseCtx, serverResponder, http.StatusAccepted, JSubmitted{
		Sequence: seq,
		Receiver: receiver,
		Command:  line,
	})
}
