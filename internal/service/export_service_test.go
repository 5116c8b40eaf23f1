package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
)

func TestExportService_ExportOrders(t *testing.T) {
	env := newTestEnv()
	svc := &exportService{repo: env.repo, logger: zap.NewNop(), now: func() time.Time { return fixedNow }}
	owner := env.addUser("alice01", "20230001", "x")
	env.orders.seedOrder(owner.ID, model.OrderStatusPending)
	done := env.orders.seedOrder(owner.ID, model.OrderStatusCompleted)
	rating := 5
	done.Rating = &rating

	buf, filename, err := svc.ExportOrders(context.Background(), &dto.OrderListRequest{})
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if filename != "repair_orders_20260309103000.xlsx" {
		t.Errorf("文件名不正确: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法读取导出文件: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("报修工单")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 行, 实际=%d", len(rows))
	}
	if rows[0][0] != "工单号" {
		t.Errorf("表头不正确: %v", rows[0])
	}
	// 按创建时间倒序，第一行为已完成工单
	if rows[1][0] != done.OrderNo || rows[1][4] != "已完成" || rows[1][10] != "5" {
		t.Errorf("数据行不正确: %v", rows[1])
	}
	if rows[1][1] != "alice01" {
		t.Errorf("期望报修人=alice01, 实际=%s", rows[1][1])
	}
}

func TestExportService_ExportOrders_Empty(t *testing.T) {
	env := newTestEnv()
	svc := &exportService{repo: env.repo, logger: zap.NewNop(), now: time.Now}

	if _, _, err := svc.ExportOrders(context.Background(), &dto.OrderListRequest{}); !errors.Is(err, ErrExportNoOrders) {
		t.Errorf("期望 ErrExportNoOrders, 实际=%v", err)
	}
}
