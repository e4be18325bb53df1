package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	logger "github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

func TestListeners(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	je := model.NewJobExecution("ingestJob", model.NewJobParameters())
	je.MarkAsStarted()
	se := model.NewStepExecution(je, "ingestStep")
	se.MarkAsStarted()
	se.ReadCount, se.WriteCount, se.SkipReadCount = 10, 8, 2
	se.MarkAsCompleted()

	NewLoggingStepListener().AfterStep(context.Background(), se)
	je.MarkAsFailed(errors.New("no inputs"))
	NewLoggingJobListener().AfterJob(context.Background(), je)

	out := buf.String()
	assert.Contains(t, out, "[INFO] Step 'ingestStep' COMPLETED: read=10 written=8 skipped=2")
	assert.Contains(t, out, "[ERROR] Job 'ingestJob' failed")
	assert.Contains(t, out, "no inputs")
}
