// Package export writes the employee roster to Parquet, locally or to a
// cloud bucket.
package export

import (
	"context"
	"fmt"

	"github.com/pawonsalam/restosuite/internal/cloudwriter"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/repositories"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetContentType = "application/vnd.apache.parquet"

// EmployeeRow is one line of the roster export.
type EmployeeRow struct {
	ID         string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name       string `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Email      string `parquet:"name=email, type=BYTE_ARRAY, convertedtype=UTF8"`
	Phone      string `parquet:"name=phone, type=BYTE_ARRAY, convertedtype=UTF8"`
	Role       string `parquet:"name=role, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Restaurant string `parquet:"name=restaurant, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Position   string `parquet:"name=position, type=BYTE_ARRAY, convertedtype=UTF8"`
	Department string `parquet:"name=department, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Salary     int64  `parquet:"name=salary, type=INT64"`
	JoinDate   int32  `parquet:"name=join_date, type=INT32, convertedtype=DATE"`
	IsActive   bool   `parquet:"name=is_active, type=BOOLEAN"`
	CreatedAt  int64  `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

func toRow(u *models.User) EmployeeRow {
	row := EmployeeRow{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UnixMilli(),
	}
	if u.Restaurant != nil {
		row.Restaurant = u.Restaurant.Name
	}
	if p := u.EmployeeProfile; p != nil {
		row.Position = p.Position
		row.Department = p.Department
		row.Salary = p.Salary.Round(0).IntPart()
		row.JoinDate = int32(p.JoinDate.Unix() / 86400)
	}
	return row
}

type Exporter struct {
	users              repositories.UserRepository
	cloudWriterFactory cloudwriter.CloudWriterFactory
	bucket             string
}

// NewExporter writes to the local filesystem when factory is nil and to
// bucket otherwise.
func NewExporter(users repositories.UserRepository, factory cloudwriter.CloudWriterFactory, bucket string) *Exporter {
	return &Exporter{users: users, cloudWriterFactory: factory, bucket: bucket}
}

// Export writes every employee to path and returns the row count.
func (e *Exporter) Export(ctx context.Context, path string) (int, error) {
	employees, err := e.users.ListByRoles(ctx, models.EmployeeRoles)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}

	fw, err := e.createFile(ctx, path)
	if err != nil {
		return 0, err
	}

	pw, err := writer.NewParquetWriter(fw, new(EmployeeRow), 4)
	if err != nil {
		fw.Close()
		return 0, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, u := range employees {
		if err := pw.Write(toRow(u)); err != nil {
			fw.Close()
			return 0, fmt.Errorf("failed to write employee %s: %w", u.ID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return 0, fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", path, err)
	}

	logger.GetLogger().Infow("exported employees", "rows", len(employees), "path", path, "bucket", e.bucket)
	return len(employees), nil
}

func (e *Exporter) createFile(ctx context.Context, path string) (source.ParquetFile, error) {
	if e.cloudWriterFactory != nil {
		cw, err := e.cloudWriterFactory.NewWriter(ctx, e.bucket, path, parquetContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), nil
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, nil
}
