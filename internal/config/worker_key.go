package config

type WorkerKeyStruct struct {
	RoomSummaryQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RoomSummaryQueue: "room_summary_queue",
}
