package mysql

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ipfs-force-community/venus-ethrpc/models/repo"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

type mysqlRequest struct {
	Id        string `gorm:"column:id;type:varchar(36);primary_key;"`
	Session   string `gorm:"uniqueIndex:session_request;column:session;type:varchar(36);NOT NULL"`
	RequestID uint64 `gorm:"uniqueIndex:session_request;column:request_id;type:bigint unsigned;NOT NULL"`

	Method      string `gorm:"column:method;type:varchar(128);"`
	Function    string `gorm:"column:func_name;type:varchar(256);"`
	Returns     string `gorm:"column:ret_type;type:varchar(64);"`
	Requirement string `gorm:"column:requirement;type:varchar(32);"`
	Transport   string `gorm:"column:transport;type:varchar(32);"`

	Payload []byte `gorm:"column:payload;type:mediumblob;"`

	Submitted time.Time `gorm:"column:submitted;type:datetime(3);index;"`
}

func (r *mysqlRequest) TableName() string {
	return "outstanding_requests"
}

func (r *mysqlRequest) Record() *types.RequestRecord {
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
	return r.DB.Create(&mysqlRequest{
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
	}).Error
}

func (r *requestRepo) Has(session string, id types.RequestID) (bool, error) {
	var count int64
	err := r.DB.Model(&mysqlRequest{}).
		Where("session = ? AND request_id = ?", session, uint64(id)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *requestRepo) Get(session string, id types.RequestID) (*types.RequestRecord, error) {
	var req mysqlRequest
	if err := r.DB.Where("session = ? AND request_id = ?", session, uint64(id)).First(&req).Error; err != nil {
		return nil, err
	}
	return req.Record(), nil
}

func (r *requestRepo) Delete(session string, id types.RequestID) error {
	return r.DB.Where("session = ? AND request_id = ?", session, uint64(id)).Delete(&mysqlRequest{}).Error
}

func (r *requestRepo) List(session string) ([]*types.RequestRecord, error) {
	return r.find(r.DB.Where("session = ?", session))
}

func (r *requestRepo) ListStale(session string) ([]*types.RequestRecord, error) {
	return r.find(r.DB.Where("session <> ?", session))
}

func (r *requestRepo) DeleteStale(session string) (int64, error) {
	res := r.DB.Where("session <> ?", session).Delete(&mysqlRequest{})
	return res.RowsAffected, res.Error
}

func (r *requestRepo) find(db *gorm.DB) ([]*types.RequestRecord, error) {
	var reqs []*mysqlRequest
	if err := db.Order("submitted, request_id").Find(&reqs).Error; err != nil {
		return nil, err
	}
	result := make([]*types.RequestRecord, 0, len(reqs))
	for _, req := range reqs {
		result = append(result, req.Record())
	}
	return result, nil
}
