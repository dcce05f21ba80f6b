package appointments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-booking/internal/kv"
	"medical-booking/internal/model"
)

func appt(id, patient string) model.Appointment {
	return model.Appointment{
		ID:          id,
		PatientID:   patient,
		PatientName: "Patient " + patient,
		DoctorID:    "d1",
		DoctorName:  "Dr. A",
		Date:        "15/03/2025",
		Time:        "09:00",
		Specialty:   "Cardiology",
		Status:      model.StatusPending,
	}
}

func TestListEmptyWhenMissing(t *testing.T) {
	repo := NewRepository(kv.NewMemory())
	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAppendIsAdditive(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory())

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, appt(fmt.Sprint(i), "p1")))
	}
	before, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 3)

	next := appt("99", "p2")
	require.NoError(t, repo.Append(ctx, next))

	after, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 4)
	assert.Equal(t, before, after[:3])
	assert.Equal(t, next, after[3])
	assert.Equal(t, model.StatusPending, after[3].Status)
}

func TestStoredFormatUsesCamelCase(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, NewRepository(mem).Append(ctx, appt("1", "p1")))

	raw, ok, err := mem.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"patientId":"p1"`)
	assert.Contains(t, raw, `"doctorName":"Dr. A"`)
	assert.Contains(t, raw, `"status":"pending"`)
}

func TestReadsExistingBlob(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, StorageKey,
		`[{"id":"1700000000000","patientId":"p1","patientName":"Ana","doctorId":"d1","doctorName":"Dr. A","date":"01/01/2030","time":"10:00","specialty":"Cardiology","status":"pending"}]`))

	got, err := NewRepository(mem).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].PatientName)
	assert.Equal(t, "01/01/2030", got[0].Date)
}

func TestWriteFailureLeavesCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	repo := NewRepository(mem)
	require.NoError(t, repo.Append(ctx, appt("1", "p1")))

	boom := errors.New("quota exceeded")
	mem.FailWith(nil, boom)
	err := repo.Append(ctx, appt("2", "p1"))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "write", perr.Op)
	assert.ErrorIs(t, err, boom)

	mem.FailWith(nil, nil)
	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReadFailure(t *testing.T) {
	mem := kv.NewMemory()
	mem.FailWith(errors.New("io"), nil)
	repo := NewRepository(mem)

	_, err := repo.List(context.Background())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "read", perr.Op)

	err = repo.Append(context.Background(), appt("1", "p1"))
	require.ErrorAs(t, err, &perr)
}

func TestCorruptBlob(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, StorageKey, "{not json"))

	err := NewRepository(mem).Append(ctx, appt("1", "p1"))
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "decode", perr.Op)

	raw, _, _ := mem.Get(ctx, StorageKey)
	assert.Equal(t, "{not json", raw)
}

func TestListForPatient(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory())
	require.NoError(t, repo.Append(ctx, appt("1", "p1")))
	require.NoError(t, repo.Append(ctx, appt("2", "p2")))
	require.NoError(t, repo.Append(ctx, appt("3", "p1")))

	got, err := repo.ListForPatient(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, appt(fmt.Sprint(i), "p1")))
		}(i)
	}
	wg.Wait()

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRepository(kv.NewRedis(client, ""))
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, appt("1", "p1")))
	require.NoError(t, repo.Append(ctx, appt("2", "p1")))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, mr.Exists(StorageKey))
}
