package sqlite

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ipfs-force-community/venus-ethrpc/models/repo"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

const requestTable = "outstanding_requests"

type outstandingRequest struct {
	Id        string `gorm:"column:id;type:varchar(36);primary_key;" json:"id"`
	Session   string `gorm:"uniqueIndex:session_request;column:session;type:varchar(36);" json:"session"`
	RequestID uint64 `gorm:"uniqueIndex:session_request;column:request_id;type:unsigned bigint;" json:"request_id"`

	Method      string `gorm:"column:method;type:varchar(128);" json:"method"`
	Function    string `gorm:"column:func_name;type:varchar(256);" json:"func_name"`
	Returns     string `gorm:"column:ret_type;type:varchar(64);" json:"ret_type"`
	Requirement string `gorm:"column:requirement;type:varchar(32);" json:"requirement"`
	Transport   string `gorm:"column:transport;type:varchar(32);" json:"transport"`

	//json bytes of the wire request
	Payload []byte `gorm:"column:payload;type:blob;" json:"payload"`

	Submitted time.Time `gorm:"column:submitted;index;" json:"submitted"`
}

func (r *outstandingRequest) TableName() string {
	return requestTable
}

func fromRecord(rec *types.RequestRecord) *outstandingRequest {
	return &outstandingRequest{
		Id:          uuid.New().String(),
		Session:     rec.Session,
		RequestID:   uint64(rec.ID),
		Method:      rec.Method,
		Function:    rec.Function,
		Returns:     string(rec.Returns),
		Requirement: string(rec.Requirement),
		Transport:   string(rec.Transport),
		Payload:     rec.Payload,
		Submitted:   rec.Submitted,
	}
}

func (r *outstandingRequest) Record() *types.RequestRecord {
	return &types.RequestRecord{
		Session: r.Session,
		PendingRequest: types.PendingRequest{
			ID:          types.RequestID(r.RequestID),
			Method:      r.Method,
			Returns:     types.ReturnType(r.Returns),
			Function:    r.Function,
			Requirement: types.TransportRequirement(r.Requirement),
			Transport:   types.TransportKind(r.Transport),
			Submitted:   r.Submitted,
		},
		Payload: json.RawMessage(r.Payload),
	}
}

var _ repo.RequestRepo = (*requestRepo)(nil)

type requestRepo struct {
	*gorm.DB
}

func newRequestRepo(db *gorm.DB) *requestRepo {
	return &requestRepo{DB: db}
}

func (r *requestRepo) Save(rec *types.RequestRecord) error {
	return r.DB.Create(fromRecord(rec)).Error
}

func (r *requestRepo) Has(session string, id types.RequestID) (bool, error) {
	var count int64
	err := r.DB.Table(requestTable).
		Where("session=? AND request_id=?", session, uint64(id)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *requestRepo) Get(session string, id types.RequestID) (*types.RequestRecord, error) {
	var req outstandingRequest
	err := r.DB.Table(requestTable).
		First(&req, "session=? AND request_id=?", session, uint64(id)).Error
	if err != nil {
		return nil, err
	}
	return req.Record(), nil
}

func (r *requestRepo) Delete(session string, id types.RequestID) error {
	return r.DB.Delete(&outstandingRequest{}, "session=? AND request_id=?", session, uint64(id)).Error
}

func (r *requestRepo) List(session string) ([]*types.RequestRecord, error) {
	return r.find("session=?", session)
}

func (r *requestRepo) ListStale(session string) ([]*types.RequestRecord, error) {
	return r.find("session<>?", session)
}

func (r *requestRepo) DeleteStale(session string) (int64, error) {
	res := r.DB.Delete(&outstandingRequest{}, "session<>?", session)
	return res.RowsAffected, res.Error
}

func (r *requestRepo) find(query string, args ...interface{}) ([]*types.RequestRecord, error) {
	var reqs []*outstandingRequest
	err := r.DB.Table(requestTable).Order("submitted, request_id").Find(&reqs, append([]interface{}{query}, args...)...).Error
	if err != nil {
		return nil, err
	}
	result := make([]*types.RequestRecord, len(reqs))
	for index, req := range reqs {
		result[index] = req.Record()
	}
	return result, nil
}
